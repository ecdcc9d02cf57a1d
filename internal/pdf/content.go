package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackzampolin/imposer/internal/imposition"
)

// contentCreator accumulates a page content stream.
type contentCreator struct {
	buf bytes.Buffer
}

func (cc *contentCreator) Bytes() []byte {
	return cc.buf.Bytes()
}

func (cc *contentCreator) Len() int {
	return cc.buf.Len()
}

func (cc *contentCreator) op(operator string, operands ...string) *contentCreator {
	for _, o := range operands {
		cc.buf.WriteString(o)
		cc.buf.WriteByte(' ')
	}
	cc.buf.WriteString(operator)
	cc.buf.WriteByte('\n')
	return cc
}

func (cc *contentCreator) Add_q() *contentCreator {
	return cc.op("q")
}

func (cc *contentCreator) Add_Q() *contentCreator {
	return cc.op("Q")
}

func (cc *contentCreator) Add_cm(t imposition.Transform) *contentCreator {
	return cc.op("cm", num(t.A), num(t.B), num(t.C), num(t.D), num(t.E), num(t.F))
}

func (cc *contentCreator) Add_Do(name string) *contentCreator {
	return cc.op("Do", "/"+name)
}

// DrawForm paints a form XObject under t, isolated in its own graphics state.
func (cc *contentCreator) DrawForm(name string, t imposition.Transform) *contentCreator {
	return cc.Add_q().Add_cm(t).Add_Do(name).Add_Q()
}

// DrawText shows text with its baseline starting at (x, y).
func (cc *contentCreator) DrawText(fontName string, fontSize, x, y float64, text string) *contentCreator {
	return cc.op("BT").
		op("Tf", "/"+fontName, num(fontSize)).
		op("Td", num(x), num(y)).
		op("Tj", "("+escapeText(text)+")").
		op("ET")
}

// num formats a number the way content streams expect: no exponent, no
// trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

var textEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)

// escapeText escapes a literal string for a Tj operand. Characters outside
// WinAnsi are replaced with '?'.
func escapeText(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		b = append(b, byte(r))
	}
	return textEscaper.Replace(string(b))
}

func formName(pageNr int) string {
	return fmt.Sprintf("Fm%d", pageNr)
}
