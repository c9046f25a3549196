package walker

import (
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/pipe01/lexkit/token"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/slices"
)

var log = commonlog.GetLogger("lexkit.walker")

// Member is a single property of an Object.
type Member struct {
	Name  string
	Value any
}

// Object is a property bag that is walked in insertion order, unlike maps
// whose keys are sorted.
type Object []Member

var (
	objectType = reflect.TypeOf(Object(nil))
	numberType = reflect.TypeOf(json.Number(""))
)

// Walker turns arbitrary Go values into common grammar tokens.
type Walker struct {
	settings Settings
}

func New(settings *Settings) (*Walker, error) {
	if settings == nil {
		return nil, &ArgumentError{Param: "settings"}
	}

	return &Walker{settings: *settings}, nil
}

// GetTokens returns a lazy token sequence for v. The value is read while the
// sequence is consumed, so it must not be mutated until then.
func (w *Walker) GetTokens(v any) (token.Sequence[Kind], error) {
	if w.settings.GraphCycles == MaxDepth && w.settings.MaxDepth <= 0 {
		return nil, &ArgumentError{Param: "maxDepth"}
	}

	return &walk{
		settings: &w.settings,
		root:     reflect.ValueOf(v),
		path:     make(map[identity]struct{}),
	}, nil
}

type frameKind int

const (
	frameArray frameKind = iota
	frameMap
	frameStruct
	frameMembers
)

type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type mapKey struct {
	name string
	key  reflect.Value
}

type field struct {
	name      string
	index     []int
	omitEmpty bool
	tagged    bool
}

type frame struct {
	kind  frameKind
	v     reflect.Value
	index int

	keys    []mapKey
	fields  []field
	members Object

	id      identity
	tracked bool
}

type walk struct {
	settings *Settings
	root     reflect.Value
	started  bool

	stack   []*frame
	path    map[identity]struct{}
	pending []Token
	err     error
}

func (s *walk) Next() (Token, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return Token{}, s.err
		}

		if !s.started {
			s.started = true
			s.err = s.visit(s.root)
			continue
		}

		if len(s.stack) == 0 {
			return Token{}, io.EOF
		}

		s.err = s.step()
	}

	t := s.pending[0]
	s.pending = s.pending[1:]

	return t, nil
}

func (s *walk) emit(tokens ...Token) {
	s.pending = append(s.pending, tokens...)
}

func (s *walk) step() error {
	f := s.stack[len(s.stack)-1]

	switch f.kind {
	case frameArray:
		if f.index >= f.v.Len() {
			break
		}

		item := f.v.Index(f.index)
		f.index++

		return s.visit(item)

	case frameMap:
		if f.index >= len(f.keys) {
			break
		}

		k := f.keys[f.index]
		f.index++

		s.emit(TokenProperty(k.name))
		return s.visit(f.v.MapIndex(k.key))

	case frameStruct:
		for f.index < len(f.fields) {
			fd := f.fields[f.index]
			f.index++

			fv, err := f.v.FieldByIndexErr(fd.index)
			if err != nil {
				// promoted through a nil embedded pointer
				continue
			}
			if fd.omitEmpty && fv.IsZero() {
				continue
			}

			s.emit(TokenProperty(fd.name))
			return s.visit(fv)
		}

	case frameMembers:
		if f.index >= len(f.members) {
			break
		}

		m := f.members[f.index]
		f.index++

		s.emit(TokenProperty(m.Name))
		return s.visit(reflect.ValueOf(m.Value))
	}

	s.pop()
	return nil
}

func (s *walk) pop() {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	if f.tracked {
		delete(s.path, f.id)
	}

	if f.kind == frameArray {
		s.emit(TokenArrayEnd())
	} else {
		s.emit(TokenObjectEnd())
	}
}

func (s *walk) visit(v reflect.Value) error {
	var (
		id      identity
		tracked bool
	)

	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			s.emit(TokenNull())
			return nil
		}

		if v.Kind() == reflect.Pointer && !tracked {
			id = identity{typ: v.Type(), ptr: v.Pointer()}
			tracked = true
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		s.emit(TokenNull())
		return nil
	}

	for _, f := range s.settings.Filters {
		if tokens, ok := f.TryWrite(v); ok {
			s.emit(tokens...)
			return nil
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			s.emit(TokenTrue())
		} else {
			s.emit(TokenFalse())
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.emit(TokenValue(v.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s.emit(TokenValue(v.Uint()))

	case reflect.Float32, reflect.Float64:
		s.emit(TokenValue(v.Float()))

	case reflect.String:
		if v.Type() == numberType {
			s.emit(numberToken(json.Number(v.String())))
		} else {
			s.emit(TokenValue(v.String()))
		}

	case reflect.Slice:
		if v.IsNil() {
			s.emit(TokenNull())
			return nil
		}

		if !tracked {
			id = identity{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}
			tracked = true
		}

		if v.Type() == objectType {
			members := v.Interface().(Object)
			return s.enter(&frame{kind: frameMembers, members: members, id: id, tracked: tracked}, TokenObjectBegin(LabelObject))
		}

		return s.enter(&frame{kind: frameArray, v: v, id: id, tracked: tracked}, TokenArrayBegin(LabelArray))

	case reflect.Array:
		return s.enter(&frame{kind: frameArray, v: v, id: id, tracked: tracked}, TokenArrayBegin(LabelArray))

	case reflect.Map:
		if v.IsNil() {
			s.emit(TokenNull())
			return nil
		}

		if !tracked {
			id = identity{typ: v.Type(), ptr: v.Pointer()}
			tracked = true
		}

		return s.enter(&frame{kind: frameMap, v: v, keys: sortedKeys(v), id: id, tracked: tracked}, TokenObjectBegin(LabelObject))

	case reflect.Struct:
		label := v.Type().Name()
		if label == "" {
			label = LabelObject
		}

		return s.enter(&frame{kind: frameStruct, v: v, fields: fieldsOf(v.Type()), id: id, tracked: tracked}, TokenObjectBegin(label))

	default:
		return &UnsupportedTypeError{Type: v.Type()}
	}

	return nil
}

func (s *walk) enter(f *frame, begin Token) error {
	switch s.settings.GraphCycles {
	case MaxDepth:
		if len(s.stack) >= s.settings.MaxDepth {
			return &GraphCycleError{Type: MaxDepth, Depth: s.settings.MaxDepth}
		}

		// Depth is the only guard under this policy.
		f.tracked = false

	default:
		if f.tracked {
			if _, ok := s.path[f.id]; ok {
				if s.settings.GraphCycles == Reference {
					return &GraphCycleError{Type: Reference}
				}

				log.Debugf("replacing cyclic %s with null", f.id.typ)
				s.emit(TokenNull())
				return nil
			}

			s.path[f.id] = struct{}{}
		}
	}

	s.emit(begin)
	s.stack = append(s.stack, f)

	return nil
}

func numberToken(n json.Number) Token {
	if i, err := n.Int64(); err == nil {
		return TokenValue(i)
	}
	if f, err := n.Float64(); err == nil {
		return TokenValue(f)
	}

	return TokenValue(string(n))
}

func sortedKeys(v reflect.Value) []mapKey {
	keys := make([]mapKey, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		keys = append(keys, mapKey{name: keyName(k), key: k})
	}

	slices.SortFunc(keys, func(a, b mapKey) int {
		return strings.Compare(a.name, b.name)
	})

	return keys
}

func keyName(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}

	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			if b, err := tm.MarshalText(); err == nil {
				return string(b)
			}
		}

		return fmt.Sprint(k.Interface())
	}

	return k.String()
}

// fieldsOf lists the fields written for a struct type. Fields of embedded
// structs without a json name are promoted the way encoding/json does: the
// shallowest field wins a name clash, a tagged one breaks a tie and anything
// still ambiguous is dropped.
func fieldsOf(t reflect.Type) []field {
	var found []field
	collectFields(t, nil, map[reflect.Type]bool{}, &found)

	byName := make(map[string][]int, len(found))
	for i, f := range found {
		byName[f.name] = append(byName[f.name], i)
	}

	fields := make([]field, 0, len(found))

	for i, f := range found {
		if dominant(found, byName[f.name]) == i {
			fields = append(fields, f)
		}
	}

	return fields
}

func collectFields(t reflect.Type, index []int, path map[reflect.Type]bool, found *[]field) {
	if path[t] {
		return
	}
	path[t] = true
	defer delete(path, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}

		tagName, opts, _ := strings.Cut(tag, ",")
		fieldIndex := append(index[:len(index):len(index)], i)

		if sf.Anonymous {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}

			if ft.Kind() == reflect.Struct && tagName == "" {
				collectFields(ft, fieldIndex, path, found)
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		name := sf.Name
		if tagName != "" {
			name = tagName
		}

		*found = append(*found, field{
			name:      name,
			index:     fieldIndex,
			omitEmpty: slices.Contains(strings.Split(opts, ","), "omitempty"),
			tagged:    tagName != "",
		})
	}
}

// dominant returns which of the candidates sharing a name is written, or -1.
func dominant(found []field, candidates []int) int {
	if len(candidates) == 1 {
		return candidates[0]
	}

	depth := len(found[candidates[0]].index)
	for _, c := range candidates[1:] {
		if d := len(found[c].index); d < depth {
			depth = d
		}
	}

	winner, tagged, count := -1, 0, 0
	for _, c := range candidates {
		if len(found[c].index) != depth {
			continue
		}

		count++
		if found[c].tagged {
			tagged++
			winner = c
		}
	}

	switch {
	case count == 1:
		for _, c := range candidates {
			if len(found[c].index) == depth {
				return c
			}
		}
	case tagged == 1:
		return winner
	}

	return -1
}
