package sourcemap

import "strings"

// segment is one decoded mapping: a generated column plus optional source
// coordinates and name index. hasSource/hasName distinguish 1-field and
// 4-field segments from 5-field ones.
type segment struct {
	genCol    int
	srcIndex  int
	srcLine   int
	srcCol    int
	nameIndex int
	hasSource bool
	hasName   bool
}

// decodeMappings expands the mappings string into per-line segment lists.
// A malformed segment drops the rest of its line rather than failing the
// whole map.
func decodeMappings(mappings string) [][]segment {
	lines := strings.Split(mappings, ";")
	result := make([][]segment, len(lines))

	srcIndex, srcLine, srcCol, nameIndex := 0, 0, 0, 0
	for li, line := range lines {
		genCol := 0
		var segs []segment
		pos := 0
		for pos < len(line) {
			if line[pos] == ',' {
				pos++
				continue
			}
			var s segment
			var v int
			var ok bool

			v, pos, ok = decodeVLQ(line, pos)
			if !ok {
				break
			}
			genCol += v
			s.genCol = genCol

			if pos < len(line) && line[pos] != ',' {
				var v1, v2, v3 int
				v1, pos, ok = decodeVLQ(line, pos)
				if !ok {
					break
				}
				v2, pos, ok = decodeVLQ(line, pos)
				if !ok {
					break
				}
				v3, pos, ok = decodeVLQ(line, pos)
				if !ok {
					break
				}
				srcIndex += v1
				srcLine += v2
				srcCol += v3
				s.srcIndex, s.srcLine, s.srcCol = srcIndex, srcLine, srcCol
				s.hasSource = true

				if pos < len(line) && line[pos] != ',' {
					v, pos, ok = decodeVLQ(line, pos)
					if !ok {
						break
					}
					nameIndex += v
					s.nameIndex = nameIndex
					s.hasName = true
				}
			}
			segs = append(segs, s)
		}
		result[li] = segs
	}
	return result
}

// encodeMappings serializes per-line segments back into a mappings string.
func encodeMappings(lines [][]segment) string {
	var sb strings.Builder
	srcIndex, srcLine, srcCol, nameIndex := 0, 0, 0, 0
	for li, segs := range lines {
		if li > 0 {
			sb.WriteByte(';')
		}
		genCol := 0
		for si, s := range segs {
			if si > 0 {
				sb.WriteByte(',')
			}
			encodeVLQ(&sb, s.genCol-genCol)
			genCol = s.genCol
			if !s.hasSource {
				continue
			}
			encodeVLQ(&sb, s.srcIndex-srcIndex)
			encodeVLQ(&sb, s.srcLine-srcLine)
			encodeVLQ(&sb, s.srcCol-srcCol)
			srcIndex, srcLine, srcCol = s.srcIndex, s.srcLine, s.srcCol
			if s.hasName {
				encodeVLQ(&sb, s.nameIndex-nameIndex)
				nameIndex = s.nameIndex
			}
		}
	}
	return sb.String()
}

// Compose chains two maps: outer maps final→intermediate (the minifier's
// output), inner maps intermediate→original (the map that arrived with the
// input). The result maps final positions to original coordinates, carrying
// inner's sources and content. Outer segments that land on a line inner does
// not cover degrade to position-only segments.
func Compose(outer *Map, inner *Map) *Map {
	innerLines := decodeMappings(inner.Mappings)
	outerLines := decodeMappings(outer.Mappings)

	composed := make([][]segment, len(outerLines))
	for li, segs := range outerLines {
		var out []segment
		for _, s := range segs {
			if !s.hasSource {
				out = append(out, segment{genCol: s.genCol})
				continue
			}
			hit, ok := lookup(innerLines, s.srcLine, s.srcCol)
			if !ok || !hit.hasSource {
				out = append(out, segment{genCol: s.genCol})
				continue
			}
			mapped := segment{
				genCol:    s.genCol,
				srcIndex:  hit.srcIndex,
				srcLine:   hit.srcLine,
				srcCol:    hit.srcCol,
				hasSource: true,
			}
			// Names from the outer map index into the minified name table;
			// inner's table is authoritative for original identifiers.
			if hit.hasName {
				mapped.nameIndex = hit.nameIndex
				mapped.hasName = true
			}
			out = append(out, mapped)
		}
		composed[li] = out
	}

	return &Map{
		Version:        3,
		File:           outer.File,
		SourceRoot:     inner.SourceRoot,
		Sources:        inner.Sources,
		SourcesContent: inner.SourcesContent,
		Names:          inner.Names,
		Mappings:       encodeMappings(composed),
	}
}

// lookup finds the inner segment covering (line, col): the last segment on
// that line whose generated column does not exceed col.
func lookup(lines [][]segment, line int, col int) (segment, bool) {
	if line < 0 || line >= len(lines) {
		return segment{}, false
	}
	var best segment
	found := false
	for _, s := range lines[line] {
		if s.genCol > col {
			break
		}
		best = s
		found = true
	}
	return best, found
}
