package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders an expression as an s-expression for diagnostic dumps.
// Opaque leaves render as their registered name.
func Sprint(e Expr) string {
	var sb strings.Builder
	sprint(&sb, e)
	return sb.String()
}

func sprint(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case axis:
		sb.WriteByte("xyz"[n])
	case constant:
		sb.WriteString(strconv.FormatFloat(float64(n), 'g', -1, 64))
	case *binary:
		sb.WriteByte('(')
		switch n.op {
		case opAdd:
			sb.WriteString("+ ")
		case opSub:
			sb.WriteString("- ")
		case opMul:
			sb.WriteString("* ")
		case opMin:
			sb.WriteString("min ")
		case opMax:
			sb.WriteString("max ")
		}
		sprint(sb, n.a)
		sb.WriteByte(' ')
		sprint(sb, n.b)
		sb.WriteByte(')')
	case *abs:
		sb.WriteString("(abs ")
		sprint(sb, n.a)
		sb.WriteByte(')')
	case *remap:
		sb.WriteString("(remap ")
		sprint(sb, n.a)
		for _, c := range []Expr{n.ex, n.ey, n.ez} {
			sb.WriteByte(' ')
			sprint(sb, c)
		}
		sb.WriteByte(')')
	case *scaleUniform:
		fmt.Fprintf(sb, "(scale %g ", n.k)
		sprint(sb, n.a)
		sb.WriteByte(')')
	case *opaque:
		sb.WriteString(n.name)
	default:
		sb.WriteString("?")
	}
}
