package codegen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jhump/grpcgen/config"
)

// RenderOptions control which parts of a GenerationRequest are emitted.
type RenderOptions struct {
	AccessLevel          config.AccessLevel
	AccessLevelOnImports bool
	Servers              bool
	Clients              bool
}

// Render writes the source code for req in the target's language to w.
func Render(w io.Writer, req *GenerationRequest, t *Target, opts RenderOptions) error {
	p := &printer{indentUnit: t.indent}
	if err := t.render(p, req, opts); err != nil {
		return err
	}
	src := p.buf.Bytes()
	if t.format != nil {
		formatted, err := t.format(src)
		if err != nil {
			return fmt.Errorf("failed to format code generated for %s: %v", req.FileName, err)
		}
		src = formatted
	}
	_, err := w.Write(src)
	return err
}

// printer accumulates generated source, one indented line at a time.
type printer struct {
	buf        bytes.Buffer
	indentUnit string
	depth      int
}

// P prints one line at the current indentation. An empty format prints a
// blank line.
func (p *printer) P(format string, args ...interface{}) {
	if format == "" {
		p.buf.WriteByte('\n')
		return
	}
	p.buf.WriteString(strings.Repeat(p.indentUnit, p.depth))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// Raw writes s as-is.
func (p *printer) Raw(s string) {
	p.buf.WriteString(s)
}

// Doc prints a comment with each line behind the given prefix.
func (p *printer) Doc(comment, prefix string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(comment, "\n"), "\n") {
		p.P("%s%s", prefix, line)
	}
}

func (p *printer) In() {
	p.depth++
}

func (p *printer) Out() {
	p.depth--
}
