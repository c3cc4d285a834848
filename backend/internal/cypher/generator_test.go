package cypher

import (
	"strings"
	"testing"
	"time"

	"lexgraph/backend/internal/parser"
	"lexgraph/backend/internal/urn"
)

const minimalDecree = `NGHỊ ĐỊNH
Số: 30/2020/NĐ-CP
Chính phủ ban hành Nghị định về công tác văn thư.
Điều 1. Phạm vi điều chỉnh
1. Nghị định này quy định về công tác văn thư.
2. Nghị định này áp dụng đối với cơ quan nhà nước.
ngày 5 tháng 3 năm 2020`

func fixedGenerator() *Generator {
	g := NewGenerator(urn.NewGenerator())
	g.now = func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	}
	return g
}

func generate(t *testing.T, text string, opts Options) (string, string) {
	t.Helper()
	doc := parser.Parse(text)
	md := doc.Metadata
	urns := urn.NewGenerator()
	documentURN := urns.DocumentURN(md.LoaiVanBan, md.CoQuanBanHanh, md.NgayBanHanh, md.SoHieu)
	return fixedGenerator().Generate(doc, documentURN, opts), documentURN
}

// Same input, same identifier, same clock: byte-identical output.
func TestGenerateDeterministic(t *testing.T) {
	first, _ := generate(t, minimalDecree, Options{Mode: ModeBasic})
	second, _ := generate(t, minimalDecree, Options{Mode: ModeBasic})
	if first != second {
		t.Error("two runs over the same input differ")
	}
}

func TestGenerateBasicStatementShape(t *testing.T) {
	script, documentURN := generate(t, minimalDecree, Options{Mode: ModeBasic})

	// One document upsert plus node+edge per component (article and two clauses)
	statements := Split(script)
	if len(statements) != 7 {
		t.Fatalf("got %d statements, want 7:\n%s", len(statements), script)
	}

	if !strings.HasPrefix(statements[0], "MERGE (vb:VanBan {urn: '"+documentURN+"'})") {
		t.Errorf("first statement is not the document upsert:\n%s", statements[0])
	}

	// Parent upsert precedes the child upsert and the connecting edge
	docIdx := strings.Index(script, "MERGE (vb:VanBan")
	articleIdx := strings.Index(script, "MERGE (c:Dieu:ThanhPhanVanBan")
	clauseIdx := strings.Index(script, "MERGE (c:Khoan:ThanhPhanVanBan")
	edgeIdx := strings.Index(script, "MERGE (p)-[r:HAS_COMPONENT]->(c)")
	if docIdx < 0 || articleIdx < 0 || clauseIdx < 0 || edgeIdx < 0 {
		t.Fatalf("missing expected statements:\n%s", script)
	}
	if !(docIdx < articleIdx && articleIdx < edgeIdx && articleIdx < clauseIdx) {
		t.Error("statements out of dependency order")
	}

	// Sibling position carried on the edge
	if !strings.Contains(script, "SET r.thuTuSapXep = 0;") || !strings.Contains(script, "SET r.thuTuSapXep = 1;") {
		t.Error("missing sibling order assignments")
	}

	// Issuance date rendered through the date() constructor
	if !strings.Contains(script, "vb.ngayBanHanh = date('2020-03-05')") {
		t.Error("missing date() wrapper on ngayBanHanh")
	}

	// Basic mode carries none of the enhanced sections
	for _, forbidden := range []string{"PhienBanVanBan", "CTV", "SuKienLapPhap", "VanBanThamChieu", "ISSUED_BY"} {
		if strings.Contains(script, forbidden) {
			t.Errorf("basic mode emitted %s", forbidden)
		}
	}
}

// One root with a single child: one document upsert, two component upserts,
// two hierarchy-edge upserts.
func TestGenerateSingleChildCounts(t *testing.T) {
	script, _ := generate(t, "NGHỊ ĐỊNH\nĐiều 1. Phạm vi\n1. Khoản duy nhất.", Options{Mode: ModeBasic})

	statements := Split(script)
	if len(statements) != 5 {
		t.Fatalf("got %d statements, want 5:\n%s", len(statements), script)
	}

	var docs, components, edges int
	for _, stmt := range statements {
		switch {
		case strings.Contains(stmt, "MERGE (vb:VanBan"):
			docs++
		case strings.Contains(stmt, ":ThanhPhanVanBan {urn:") && strings.Contains(stmt, "MERGE (c:"):
			components++
		case strings.Contains(stmt, "MERGE (p)-[r:HAS_COMPONENT]->(c)"):
			edges++
		}
	}
	if docs != 1 || components != 2 || edges != 2 {
		t.Errorf("docs=%d components=%d edges=%d, want 1/2/2", docs, components, edges)
	}
}

func TestGenerateRepeatedRunsSameKeys(t *testing.T) {
	script, documentURN := generate(t, minimalDecree, Options{Mode: ModeBasic})

	// Idempotence rests on MERGE keyed by urn: no CREATE anywhere
	for _, stmt := range Split(script) {
		if strings.HasPrefix(stmt, "CREATE") {
			t.Errorf("non-idempotent statement: %s", stmt)
		}
	}
	if !strings.Contains(script, documentURN+"#dieu1") {
		t.Error("component keys are not derived from the document identifier")
	}
}

func TestGenerateMissingFieldsRenderNull(t *testing.T) {
	script, documentURN := generate(t, "Điều 1. Nội dung", Options{Mode: ModeBasic})

	if !strings.Contains(documentURN, "null") {
		t.Errorf("identifier lacks null placeholders: %s", documentURN)
	}
	for _, want := range []string{
		"vb.tenGoi = null",
		"vb.soHieu = null",
		"vb.ngayBanHanh = null",
		"vb.coQuanBanHanh = null",
		"c.noiDung = null",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("missing %q in:\n%s", want, script)
		}
	}
}

func TestGenerateTitleProperty(t *testing.T) {
	text := `NGHỊ ĐỊNH
VỀ CÔNG TÁC VĂN THƯ VÀ LƯU TRỮ
Số: 30/2020/NĐ-CP
Điều 1. Phạm vi điều chỉnh`

	script, _ := generate(t, text, Options{Mode: ModeBasic})
	if !strings.Contains(script, "vb.tenGoi = 'VỀ CÔNG TÁC VĂN THƯ VÀ LƯU TRỮ'") {
		t.Errorf("missing tenGoi property:\n%s", script)
	}
	if !strings.Contains(script, "// Document: VỀ CÔNG TÁC VĂN THƯ VÀ LƯU TRỮ") {
		t.Error("missing title header comment")
	}

	// Header falls back to Unknown when no title was detected
	script, _ = generate(t, minimalDecree, Options{Mode: ModeBasic})
	if !strings.Contains(script, "// Document: Unknown") {
		t.Error("missing Unknown fallback in header")
	}
	if !strings.Contains(script, "vb.tenGoi = null") {
		t.Error("absent title should render as null")
	}
}

func TestGenerateEscaping(t *testing.T) {
	text := "Điều 1. Quy định về 'dấu nháy' và \\ gạch chéo\nNội dung có 'trích dẫn' bên trong."
	script, _ := generate(t, text, Options{Mode: ModeBasic})

	if !strings.Contains(script, `\'dấu nháy\'`) {
		t.Errorf("single quotes not escaped:\n%s", script)
	}
	if !strings.Contains(script, `\\ gạch chéo`) {
		t.Errorf("backslash not escaped:\n%s", script)
	}
	if !strings.Contains(script, `\'trích dẫn\'`) {
		t.Errorf("body quotes not escaped:\n%s", script)
	}
}

func TestRenderBodyTruncation(t *testing.T) {
	long := strings.Repeat("nội dung rất dài ", 100)
	got := renderBody(long)
	if n := len([]rune(got)); n != MaxBodyLength {
		t.Errorf("truncated length = %d runes, want %d", n, MaxBodyLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated body lacks ellipsis: %q", got[len(got)-10:])
	}

	short := "dòng một\n\ndòng   hai"
	if got := renderBody(short); got != "dòng một dòng hai" {
		t.Errorf("newline collapse = %q", got)
	}

	if got := renderBody(""); got != "" {
		t.Errorf("renderBody(\"\") = %q", got)
	}
}

func TestGenerateEnhanced(t *testing.T) {
	script, documentURN := generate(t, minimalDecree, Options{Mode: ModeEnhanced})

	// Specialized label and work-level metadata on the document node
	for _, want := range []string{
		"SET vb:NghiDinh",
		"vb.workId = 'NGHIDINH-2020-30'",
		"vb.capPhapLy = 7",
		"vb.trangThai = 'HIEU_LUC'",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("missing %q", want)
		}
	}

	// Authority node and edge
	if !strings.Contains(script, "MERGE (cq:CoQuanBanHanh {coQuanId: 'CHINH_PHU'})") {
		t.Error("missing authority upsert")
	}
	if !strings.Contains(script, "cq.tenDayDu = 'Chính phủ'") {
		t.Error("missing authority full name")
	}
	if !strings.Contains(script, "MERGE (vb)-[r:ISSUED_BY]->(cq)") {
		t.Error("missing ISSUED_BY edge")
	}

	// Initial temporal version keyed by document identifier plus date
	if !strings.Contains(script, "MERGE (tv:PhienBanVanBan {urn: '"+documentURN+"@2020-03-05'})") {
		t.Error("missing temporal version upsert")
	}
	if !strings.Contains(script, "tv.loaiPhienBan = 'BAN_DAU'") {
		t.Error("missing version kind")
	}

	// One CTV per component
	if got := strings.Count(script, "MERGE (ctv:CTV {urn: '"); got != 3 {
		t.Errorf("got %d CTV upserts, want 3", got)
	}
	if !strings.Contains(script, "MERGE (tv)-[agg:AGGREGATES]->(ctv)") {
		t.Error("missing AGGREGATES edge")
	}

	// Promulgation is implicit: no event node even with events enabled
	script, _ = generate(t, minimalDecree, Options{Mode: ModeEnhanced, IncludeEvents: true})
	if strings.Contains(script, "SuKienLapPhap") {
		t.Error("promulgation should not emit a legislative event")
	}
}

func TestGenerateEnhancedAmendmentEvent(t *testing.T) {
	text := `NGHỊ ĐỊNH
Số: 45/2021/NĐ-CP
Chính phủ ban hành Nghị định sửa đổi một số điều của Nghị định số 30/2020/NĐ-CP ngày 5 tháng 3 năm 2020.
Điều 1. Sửa đổi Điều 7 của Nghị định số 30/2020/NĐ-CP`

	script, _ := generate(t, text, Options{Mode: ModeEnhanced, IncludeEvents: true})
	if !strings.Contains(script, "MERGE (evt:SuKienLapPhap {eventId: 'EVT-SUA_DOI-NGHIDINH-2020-45'})") {
		t.Errorf("missing amendment event:\n%s", script)
	}
	if !strings.Contains(script, "MERGE (vb)-[:TRIGGERS]->(evt);") {
		t.Error("missing TRIGGERS edge")
	}

	// Events suppressed when not requested
	script, _ = generate(t, text, Options{Mode: ModeEnhanced})
	if strings.Contains(script, "SuKienLapPhap") {
		t.Error("event emitted without IncludeEvents")
	}
}

func TestGenerateEnhancedNoDateSkipsTemporal(t *testing.T) {
	script, _ := generate(t, "NGHỊ ĐỊNH\nĐiều 1. Phạm vi", Options{Mode: ModeEnhanced})

	if !strings.Contains(script, "// No issuance date detected - temporal versions skipped") {
		t.Error("missing skip comment")
	}
	if strings.Contains(script, "PhienBanVanBan") {
		t.Error("temporal version emitted without a date")
	}
	if strings.Contains(script, "MERGE (ctv:CTV") {
		t.Error("CTVs emitted without a date")
	}
}

func TestGenerateEnhancedReferences(t *testing.T) {
	text := `NGHỊ ĐỊNH
Căn cứ Luật Tổ chức Chính phủ ngày 19 tháng 6 năm 2015;
Điều 1. Phạm vi`

	script, _ := generate(t, text, Options{Mode: ModeEnhanced})
	if !strings.Contains(script, "MERGE (ref:VanBanThamChieu {urn: 'urn:lex:vn:ref:") {
		t.Errorf("missing reference node:\n%s", script)
	}
	if !strings.Contains(script, "MERGE (vb)-[:THAM_CHIEU]->(ref);") {
		t.Error("missing THAM_CHIEU edge")
	}
	if !strings.Contains(script, "ref.noiDung = 'Căn cứ Luật Tổ chức Chính phủ ngày 19 tháng 6 năm 2015'") {
		t.Error("missing reference text")
	}
}

func TestSplit(t *testing.T) {
	script := `// comment line
MERGE (a:Node {urn: 'x'})
SET a.v = 1;

MERGE (b:Node {v: 'semi;colon'});

// trailing comment
MATCH (a:Node {urn: 'x'})
MATCH (b:Node {urn: 'y'})
MERGE (a)-[:REL]->(b);
`

	statements := Split(script)
	if len(statements) != 3 {
		t.Fatalf("got %d statements, want 3: %#v", len(statements), statements)
	}
	if statements[0] != "MERGE (a:Node {urn: 'x'})\nSET a.v = 1" {
		t.Errorf("statements[0] = %q", statements[0])
	}

	// Semicolon inside the literal must not end the statement
	if statements[1] != "MERGE (b:Node {v: 'semi;colon'})" {
		t.Errorf("statements[1] = %q", statements[1])
	}

	if !strings.HasPrefix(statements[2], "MATCH (a:Node") || !strings.HasSuffix(statements[2], "MERGE (a)-[:REL]->(b)") {
		t.Errorf("statements[2] = %q", statements[2])
	}
}

func TestSplitEscapedQuote(t *testing.T) {
	statements := Split(`MERGE (n:X {v: 'nội dung \'trích;dẫn\''});`)
	if len(statements) != 1 {
		t.Fatalf("got %d statements, want 1: %#v", len(statements), statements)
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split("// only comments\n\n"); len(got) != 0 {
		t.Errorf("got %d statements, want 0", len(got))
	}
}

func TestHierarchyLevelDefault(t *testing.T) {
	if got := hierarchyLevel("VAN_BAN"); got != 15 {
		t.Errorf("hierarchyLevel(VAN_BAN) = %d, want 15", got)
	}
	if got := hierarchyLevel("HIEN_PHAP"); got != 1 {
		t.Errorf("hierarchyLevel(HIEN_PHAP) = %d, want 1", got)
	}
}
