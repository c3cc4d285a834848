package parser

import (
	"regexp"
	"strings"
)

type markerPattern struct {
	typ   string
	level int
	re    *regexp.Regexp
}

// Level-tagged marker table, highest level first. KHOAN ("1.") must be tested
// after DIEU ("Điều 1.") and TIEU_MUC ("a.") after DIEM ("a)") so the more
// specific form wins.
var markerPatterns = []markerPattern{
	{TypePhan, 1, regexp.MustCompile(`(?i)^Phần\s+(?:thứ\s+)?([IVX]+|một|hai|ba|bốn|năm|sáu|bảy|tám|chín|mười)`)},
	{TypeChuong, 2, regexp.MustCompile(`(?i)^Chương\s+([IVX]+|\d+)`)},
	{TypeMuc, 3, regexp.MustCompile(`(?i)^Mục\s+(\d+)`)},
	{TypeDieu, 4, regexp.MustCompile(`(?i)^Điều\s+(\d+)\.`)},
	{TypeKhoan, 5, regexp.MustCompile(`^(\d+)\.`)},
	{TypeDiem, 6, regexp.MustCompile(`^([a-zđ])\)`)},
	{TypeTieuMuc, 7, regexp.MustCompile(`^([a-zđ])\.`)},
}

// segment walks the text line by line and builds the component forest. An
// explicit stack holds the currently open component at each nesting level;
// non-marker lines accumulate into a buffer that is flushed into the deepest
// open component when the next marker (or end of input) arrives. Text before
// the first marker has no open component and is discarded.
func segment(text string) []*Component {
	var (
		roots []*Component
		stack []*Component
		buf   []string
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			body := strings.Join(buf, "\n")
			if top.Body == "" {
				top.Body = body
			} else {
				top.Body += "\n" + body
			}
		}
		buf = buf[:0]
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		node, ok := matchMarker(line)
		if !ok {
			buf = append(buf, line)
			continue
		}

		flush()

		// Close every open component at the same or a deeper level; the new
		// component attaches to the nearest ancestor with a smaller level.
		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			node.Order = len(roots)
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			node.Order = len(parent.Children)
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}

	flush()
	return roots
}

// matchMarker tests a line against the marker table, first match wins. The
// trailing text after the marker becomes the component title.
func matchMarker(line string) (*Component, bool) {
	for _, p := range markerPatterns {
		loc := p.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		return &Component{
			Type:    p.typ,
			Ordinal: line[loc[2]:loc[3]],
			Title:   strings.TrimSpace(line[loc[1]:]),
			Level:   p.level,
		}, true
	}
	return nil, false
}
