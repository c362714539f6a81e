package main

import (
	"fmt"
	"os"

	"github.com/cnm13ryan/beartype"
)

func main() {
	conf, err := beartype.NewConfig(beartype.Options{Strategy: beartype.StrategyOn})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	scope := beartype.NewScope()
	schemas := []struct {
		name   string
		schema beartype.Node
	}{
		{"int | string", beartype.UnionOf(beartype.TypeOf[int](), beartype.TypeOf[string]())},
		{"[]any of int", beartype.SliceOf[any](beartype.TypeOf[int]())},
		{"map[string]any of string->int", beartype.MapOf[string, any](beartype.TypeOf[string](), beartype.TypeOf[int]())},
		{"nested union", beartype.UnionOf(
			beartype.TypeOf[bool](),
			beartype.UnionOf(beartype.TypeOf[int](), beartype.TypeOf[float64]()),
			beartype.SliceOf[any](beartype.TypeOf[string]()),
		)},
		{"forward reference", beartype.Ref("Tree", scope)},
	}

	for _, s := range schemas {
		fmt.Printf("\n=== %s ===\n", s.name)
		vd, err := beartype.Compile(s.schema, conf)
		if err != nil {
			fmt.Printf("compile error: %v\n", err)
			continue
		}
		fmt.Println(vd.Render())
		if pending := vd.Unresolved(); len(pending) > 0 {
			fmt.Printf("unresolved refs: %v\n", pending)
		}
	}

	hits, misses := beartype.CacheStats()
	fmt.Printf("\ncache: %d hits, %d misses\n", hits, misses)
}
