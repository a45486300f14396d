package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasmc/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err         error
	engine      *engine.Engine
	module      *engine.Module
	filename    string
	result      string
	funcs       []engine.FuncInfo
	inputs      []textinput.Model
	selected    int
	focusIdx    int
	state       modelState
	memoryPages uint32
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(filename string, memoryPages uint32) *interactiveModel {
	return &interactiveModel{
		filename:    filename,
		memoryPages: memoryPages,
		state:       stateSelectFunc,
	}
}

type loadedMsg struct {
	err    error
	engine *engine.Engine
	mod    *engine.Module
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := readModule(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	eng := engine.New(ctx, engine.Config{MemoryLimitPages: m.memoryPages})
	mod, err := eng.Load(ctx, filepath.Base(m.filename), data)
	if err != nil {
		_ = eng.Close(ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{engine: eng, mod: mod}
}

func (m *interactiveModel) close() {
	if m.engine != nil {
		_ = m.engine.Close(context.Background())
		m.engine = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.close()
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				m.close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.engine = msg.engine
		m.module = msg.mod
		m.funcs = msg.mod.Functions()

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = api.ValueTypeName(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	if m.module == nil {
		return callResultMsg{err: fmt.Errorf("module not loaded")}
	}

	f := m.funcs[m.selected]
	args := make([]float32, len(m.inputs))
	for i, input := range m.inputs {
		v, err := strconv.ParseFloat(strings.TrimSpace(input.Value()), 32)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("arg%d: %q is not a number", i, input.Value())}
		}
		args[i] = float32(v)
	}

	results, err := m.module.CallF32(context.Background(), f.Name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = formatF32(r)
	}
	return callResultMsg{result: strings.Join(out, ", ")}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.module == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("wasmc run"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("The module exports no functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(api.ValueTypeName(f.Params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatFunc(f engine.FuncInfo) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("arg%d: %s", i, typeStyle.Render(api.ValueTypeName(p)))
	}
	result := ""
	if len(f.Results) > 0 {
		results := make([]string, len(f.Results))
		for i, r := range f.Results {
			results[i] = api.ValueTypeName(r)
		}
		result = " -> " + typeStyle.Render(strings.Join(results, ", "))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(filename string, memoryPages uint32) error {
	m := newInteractiveModel(filename, memoryPages)
	defer m.close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
