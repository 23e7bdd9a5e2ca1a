package templates

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinArity = 2
	MaxArity = 6
)

// LiftShape describes how a LiftN combines its inputs: one merge over all of
// them, or a pair of merges whose sizes are listed in Groups.
type LiftShape struct {
	Arity  int
	Groups []int
}

var groupings = map[int][]int{
	4: {2, 2},
	5: {2, 3},
	6: {3, 3},
}

// LiftShapes returns the shapes of Lift2 up to LiftN for n = maxArity.
func LiftShapes(maxArity int) ([]LiftShape, error) {
	if maxArity < MinArity || maxArity > MaxArity {
		return nil, fmt.Errorf("arity %d out of range [%d, %d]", maxArity, MinArity, MaxArity)
	}
	shapes := make([]LiftShape, 0, maxArity-MinArity+1)
	for n := MinArity; n <= maxArity; n++ {
		shapes = append(shapes, LiftShape{Arity: n, Groups: groupings[n]})
	}
	return shapes, nil
}

func (s LiftShape) nested() bool {
	return len(s.Groups) > 0
}

func prefixedStrings(prefix string, count int) string {
	return prefixedRange(prefix, 0, count)
}

func prefixedRange(prefix string, from, count int) string {
	var sb strings.Builder
	for i := from; i < from+count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		if i < from+count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

func mergeName(size int) string {
	return "Merge" + strconv.Itoa(size)
}

func tupleName(size int) string {
	if size == 3 {
		return "Triple"
	}
	return "Pair"
}

var tupleFields = []string{"First", "Second", "Third"}

// combination renders the merge expression the shape stands for.
func combination(s LiftShape) string {
	if !s.nested() {
		return mergeName(s.Arity) + "(" + prefixedStrings("s", s.Arity) + ")"
	}
	parts := make([]string, len(s.Groups))
	from := 0
	for i, size := range s.Groups {
		parts[i] = mergeName(size) + "(" + prefixedRange("s", from, size) + ")"
		from += size
	}
	return mergeName(len(s.Groups)) + "(" + strings.Join(parts, ", ") + ")"
}

// mergeLines builds the merge graph into m. Intermediate merges are closed as
// soon as the outer merge has subscribed to them.
func mergeLines(s LiftShape) string {
	var sb strings.Builder
	if !s.nested() {
		fmt.Fprintf(&sb, "\tm := %s(%s)\n", mergeName(s.Arity), prefixedStrings("s", s.Arity))
		sb.WriteString("\tdefer m.Close()\n")
		return sb.String()
	}
	from := 0
	for i, size := range s.Groups {
		fmt.Fprintf(&sb, "\tm%d := %s(%s)\n", i, mergeName(size), prefixedRange("s", from, size))
		from += size
	}
	fmt.Fprintf(&sb, "\tm := %s(%s)\n", mergeName(len(s.Groups)), prefixedStrings("m", len(s.Groups)))
	for i := range s.Groups {
		fmt.Fprintf(&sb, "\tm%d.Close()\n", i)
	}
	sb.WriteString("\tdefer m.Close()\n")
	return sb.String()
}

// tupleType is the value type of the merge built by mergeLines.
func tupleType(s LiftShape) string {
	if !s.nested() {
		return tupleName(s.Arity) + "[" + prefixedStrings("T", s.Arity) + "]"
	}
	parts := make([]string, len(s.Groups))
	from := 0
	for i, size := range s.Groups {
		parts[i] = tupleName(size) + "[" + prefixedRange("T", from, size) + "]"
		from += size
	}
	return tupleName(len(s.Groups)) + "[" + strings.Join(parts, ", ") + "]"
}

// accessors unpacks v, a value of tupleType, into fn's arguments.
func accessors(s LiftShape) string {
	var fields []string
	if !s.nested() {
		for i := 0; i < s.Arity; i++ {
			fields = append(fields, "v."+tupleFields[i])
		}
		return strings.Join(fields, ", ")
	}
	for i, size := range s.Groups {
		for j := 0; j < size; j++ {
			fields = append(fields, "v."+tupleFields[i]+"."+tupleFields[j])
		}
	}
	return strings.Join(fields, ", ")
}
