/*
Package macro provides code templates for the EVM: structured control
flow built from jumps, a reentrancy guard, ERC-20 transfer calls with
strict success checks, and range-checked integer casts.

Every template is a vmutil.Macro. Templates that wrap caller code take
it as Macro arguments and expand it in place; the builder checks each
argument's declared arity and the stack depth along every path, so a
template misused with the wrong stack effect fails to build rather
than corrupting the caller's stack at run time.

Stack diagrams list the top of the stack first: [a, b] means a is on
top.
*/
package macro
