package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type typePattern struct {
	re   *regexp.Regexp
	code string
}

// Ordered by specificity: longer overlapping markers must come before their
// prefixes (THÔNG TƯ LIÊN TỊCH before THÔNG TƯ, NGHỊ QUYẾT...QUỐC HỘI before
// NGHỊ QUYẾT). The order is a correctness invariant.
var docTypePatterns = []typePattern{
	{regexp.MustCompile(`(?i)^HIẾN PHÁP`), "HIEN_PHAP"},
	{regexp.MustCompile(`(?i)^BỘ LUẬT`), "BO_LUAT"},
	{regexp.MustCompile(`(?i)^LUẬT`), "LUAT"},
	{regexp.MustCompile(`(?i)^NGHỊ QUYẾT.*QUỐC HỘI`), "NGHI_QUYET_QH"},
	{regexp.MustCompile(`(?i)^PHÁP LỆNH`), "PHAP_LENH"},
	{regexp.MustCompile(`(?i)^NGHỊ QUYẾT.*ỦY BAN THƯỜNG VỤ QUỐC HỘI`), "NGHI_QUYET_UBTVQH"},
	{regexp.MustCompile(`(?i)^NGHỊ QUYẾT.*UBTVQH`), "NGHI_QUYET_UBTVQH"},
	{regexp.MustCompile(`(?i)^NGHỊ ĐỊNH`), "NGHI_DINH"},
	{regexp.MustCompile(`(?i)^THÔNG TƯ LIÊN TỊCH`), "THONG_TU_LIEN_TICH"},
	{regexp.MustCompile(`(?i)^THÔNG TƯ`), "THONG_TU"},
	{regexp.MustCompile(`(?i)^QUYẾT ĐỊNH.*THỦ TƯỚNG`), "QUYET_DINH_TTG"},
	{regexp.MustCompile(`(?i)^QUYẾT ĐỊNH.*BỘ TRƯỞNG`), "QUYET_DINH_BO_TRUONG"},
	{regexp.MustCompile(`(?i)^QUYẾT ĐỊNH.*CHỦ TỊCH`), "QUYET_DINH_CHU_TICH"},
	{regexp.MustCompile(`(?i)^QUYẾT ĐỊNH`), "QUYET_DINH"},
	{regexp.MustCompile(`(?i)^CHỈ THỊ`), "CHI_THI"},
	{regexp.MustCompile(`(?i)^NGHỊ QUYẾT`), "NGHI_QUYET"},
}

type actionPattern struct {
	keyword string
	code    string
}

// Amendment keywords come before "ban hành" so that an amending decree whose
// body also contains the promulgation phrase still classifies as an amendment.
// BAN_HANH is the default anyway when nothing matches.
var actionPatterns = []actionPattern{
	{"sửa đổi", "SUA_DOI"},
	{"bổ sung", "BO_SUNG"},
	{"thay thế", "THAY_THE"},
	{"bãi bỏ", "BAI_BO"},
	{"đình chỉ", "DINH_CHI"},
	{"hủy bỏ", "HUY_BO"},
	{"hết hiệu lực", "HET_HIEU_LUC"},
	{"ban hành", "BAN_HANH"},
}

var (
	numberPattern = regexp.MustCompile(`(?i)Số:\s*(\S+)`)
	datePattern   = regexp.MustCompile(`ngày\s+(\d{1,2})\s+tháng\s+(\d{1,2})\s+năm\s+(\d{4})`)

	// Headline lines that only restate the document type are not titles.
	titleExcludePattern = regexp.MustCompile(`^(NGHỊ ĐỊNH|LUẬT|BỘ LUẬT|THÔNG TƯ|QUYẾT ĐỊNH|NGHỊ QUYẾT|PHÁP LỆNH|HIẾN PHÁP|CHỈ THỊ)`)

	authorityPatterns = []typePattern{
		{regexp.MustCompile(`(?i)Chính phủ\s+ban hành`), "CHINH_PHU"},
		{regexp.MustCompile(`(?i)Quốc hội\s+ban hành`), "QUOC_HOI"},
	}
)

// classify extracts document metadata from raw text. It never fails: fields
// that cannot be detected stay empty, type and action fall back to defaults.
func classify(text string) Metadata {
	md := Metadata{
		LoaiVanBan:      DefaultDocType,
		HanhDongLapPhap: DefaultAction,
	}

	first := firstNonBlankLine(text)
	for _, p := range docTypePatterns {
		if p.re.MatchString(first) {
			md.LoaiVanBan = p.code
			break
		}
	}

	md.TieuDe = extractTitle(text)

	lower := strings.ToLower(text)
	for _, p := range actionPatterns {
		if strings.Contains(lower, p.keyword) {
			md.HanhDongLapPhap = p.code
			break
		}
	}

	if m := numberPattern.FindStringSubmatch(text); m != nil {
		md.SoHieu = m[1]
	}

	// First date phrase in the text wins, even if it is a citation date inside
	// a "Căn cứ" clause. Known ambiguity, kept as-is.
	if m := datePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		md.NgayBanHanh = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}

	for _, p := range authorityPatterns {
		if p.re.MatchString(text) {
			md.CoQuanBanHanh = p.code
			break
		}
	}

	return md
}

// extractTitle picks the document title from the header: the first all-caps
// line among the first 10 lines that is long enough to be a headline and is
// not the document-type marker itself. Titles are conventionally set in upper
// case right below the type line.
func extractTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || titleExcludePattern.MatchString(line) {
			continue
		}
		if utf8.RuneCountInString(line) > 10 && isUpperLine(line) {
			return line
		}
	}
	return ""
}

// isUpperLine reports whether the line contains at least one letter and no
// lower-case letters.
func isUpperLine(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
