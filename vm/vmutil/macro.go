package vmutil

import "fmt"

// Macro is a named code template. Expanding it adds its body's code
// in place; there is no call or return.
//
// Takes is the number of stack items the body consumes and Returns
// the number it leaves in their place. Builder.Expand checks the body
// against both.
type Macro struct {
	Name    string
	Takes   int
	Returns int
	Body    func(*Builder)
}

func (m Macro) String() string {
	return fmt.Sprintf("%s(takes: %d, returns: %d)", m.Name, m.Takes, m.Returns)
}

// Net returns the declared net stack effect of m.
func (m Macro) Net() int {
	return m.Returns - m.Takes
}

// Build expands m on its own, assuming its Takes arguments are
// already on the stack.
func (m Macro) Build() ([]byte, error) {
	return NewBuilder().Assume(m.Takes).Expand(m).Build()
}
