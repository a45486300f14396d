// Package lang compiles a small expression language to WebAssembly modules.
//
// Basic usage:
//
//	bin, err := lang.CompileBytes(`
//		export memory 1 4;
//
//		export fn add(a, b) {
//			return a + b;
//		}
//
//		export fn hyp2(x, y) {
//			let s = square(x) + square(y);
//			return s;
//		}
//
//		fn square(v) { return v * v; }
//	`)
//
// Language:
//   - Items: "fn" declarations and at most one "memory MIN [MAX];" declaration,
//     either optionally prefixed with "export"
//   - Every value is an f32; integer literals are converted
//   - Statements: let, assignment, return, expression statements
//   - Operators: + - * / with the usual precedence, unary minus, parentheses
//   - Calls to any function in the file, including later ones
//   - Comments: '#' to end of line
//
// A function whose body does not end in a return statement returns 0.
package lang
