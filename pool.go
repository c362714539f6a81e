package beartype

import (
	"reflect"
	"sync"
)

// Typed free-lists for the scratch containers a compile request churns
// through: BFS frames, node slices for union partitioning, and type sets
// for shallow-membership dedup. Borrowed objects are returned cleared on
// every exit path so the next request starts from empty state.

var framePool = sync.Pool{
	New: func() any { return new(frame) },
}

func acquireFrame() *frame {
	return framePool.Get().(*frame)
}

func releaseFrame(f *frame) {
	*f = frame{}
	framePool.Put(f)
}

var nodeSlicePool = sync.Pool{
	New: func() any {
		s := make([]Node, 0, 8)
		return &s
	},
}

func acquireNodeSlice() *[]Node {
	s := nodeSlicePool.Get().(*[]Node)
	*s = (*s)[:0]
	return s
}

func releaseNodeSlice(s *[]Node) {
	*s = (*s)[:0]
	nodeSlicePool.Put(s)
}

var typeSetPool = sync.Pool{
	New: func() any {
		return make(map[reflect.Type]struct{}, 8)
	},
}

func acquireTypeSet() map[reflect.Type]struct{} {
	m := typeSetPool.Get().(map[reflect.Type]struct{})
	clear(m)
	return m
}

func releaseTypeSet(m map[reflect.Type]struct{}) {
	typeSetPool.Put(m)
}
