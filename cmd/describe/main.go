// Command describe inspects the native layout the binding computes for Go
// types: field offsets, repetition counts, committed extents, and which
// predefined reduction tags each type may use.
package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/hpckit/mpibind/datatype"
	"github.com/hpckit/mpibind/reduce"
	"github.com/hpckit/mpibind/transport/inproc"
)

// Sample types covering the layout cases the resolver handles: plain
// structs, inline arrays, nesting, transient fields, and a type with no
// descriptor at all.
type particle struct {
	Pos  [3]float64
	Vel  [3]float64
	Mass float64
	Tag  int32
}

type pixel struct {
	R, G, B, A uint8
}

type mesh struct {
	Weights [11]float32
	Cells   [4]pixel
	Scratch []float64 `mpi:"-"`
	ID      int64
}

type labeled struct {
	Value float64
	Name  string
}

var samples = map[string]reflect.Type{
	"particle":   reflect.TypeOf(particle{}),
	"pixel":      reflect.TypeOf(pixel{}),
	"mesh":       reflect.TypeOf(mesh{}),
	"labeled":    reflect.TypeOf(labeled{}),
	"float64":    reflect.TypeOf(float64(0)),
	"int32":      reflect.TypeOf(int32(0)),
	"uint8":      reflect.TypeOf(uint8(0)),
	"complex128": reflect.TypeOf(complex128(0)),
}

func main() {
	var (
		typeName    = flag.String("type", "", "Sample type to describe")
		list        = flag.Bool("list", false, "List sample types and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *list {
		for _, name := range sampleNames() {
			fmt.Println(name)
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *typeName == "" {
		fmt.Fprintln(os.Stderr, "Usage: describe -type <name>")
		fmt.Fprintln(os.Stderr, "       describe -list")
		fmt.Fprintln(os.Stderr, "       describe -i  (interactive mode)")
		os.Exit(1)
	}

	if err := describe(*typeName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func describe(name string) error {
	typ, ok := samples[name]
	if !ok {
		return fmt.Errorf("unknown sample type %q (try -list)", name)
	}

	tr := inproc.New()
	defer tr.Shutdown()
	reg, err := datatype.NewRegistry(tr)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	defer reg.Close()

	fmt.Print(renderDescription(reg, name, typ))
	return nil
}

// renderDescription builds the full report for one type: the descriptor
// tree plus the reduction support matrix.
func renderDescription(reg *datatype.Registry, name string, typ reflect.Type) string {
	var b strings.Builder

	desc, err := reg.Lookup(typ)
	if err != nil {
		fmt.Fprintf(&b, "%s: native failure: %v\n", name, err)
		return b.String()
	}
	if desc == nil {
		fmt.Fprintf(&b, "%s (%s)\n", titleStyle.Render(name), typ.String())
		b.WriteString(errorStyle.Render("  no descriptor: handled by generic serialization fallback"))
		b.WriteByte('\n')
		return b.String()
	}

	fmt.Fprintf(&b, "%s (%s)\n", titleStyle.Render(name), typ.String())
	fmt.Fprintf(&b, "  handle %s  extent %s bytes\n",
		typeStyle.Render(fmt.Sprintf("%d", desc.Handle())),
		typeStyle.Render(fmt.Sprintf("%d", desc.Extent())))

	if fields := desc.Fields(); len(fields) > 0 {
		b.WriteString("  fields:\n")
		for _, f := range fields {
			line := fmt.Sprintf("    %-10s offset %3d  count %2d  elem %s (extent %d)",
				f.Name, f.Offset, f.Count, f.Elem.Type(), f.Elem.Extent())
			b.WriteString(fieldStyle.Render(line))
			b.WriteByte('\n')
		}
	}

	cls := reduce.Classify(typ)
	fmt.Fprintf(&b, "  reduction class: %s\n", typeStyle.Render(cls.String()))
	var allowed []string
	for k := reduce.KindMax; k <= reduce.KindBitwiseXor; k++ {
		if cls.Permits(k) {
			allowed = append(allowed, k.String())
		}
	}
	if len(allowed) == 0 {
		b.WriteString("  predefined tags: " + errorStyle.Render("none (synthesis only)") + "\n")
	} else {
		b.WriteString("  predefined tags: " + fieldStyle.Render(strings.Join(allowed, ", ")) + "\n")
	}
	return b.String()
}
