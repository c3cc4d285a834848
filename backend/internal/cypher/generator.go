// Package cypher turns a parsed document into an idempotent Neo4j import
// script. Generation is deterministic: the same parsed input and identifier
// always produce byte-identical output (the wall clock only appears in the
// leading comment, injectable for tests).
package cypher

import (
	"fmt"
	"strings"
	"time"

	"lexgraph/backend/internal/parser"
	"lexgraph/backend/internal/urn"
)

// Mode selects the statement profile emitted by the generator.
type Mode string

const (
	// ModeBasic emits document, component and hierarchy-edge upserts only.
	ModeBasic Mode = "basic"
	// ModeEnhanced additionally emits the authority node, temporal versions,
	// component temporal versions, legislative events and reference nodes.
	ModeEnhanced Mode = "enhanced"
)

// MaxBodyLength caps the noiDung property embedded in statements.
const MaxBodyLength = 500

// Options control one generation run.
type Options struct {
	Mode          Mode
	IncludeEvents bool
}

// Generator emits Cypher import scripts for parsed documents.
type Generator struct {
	urns *urn.Generator
	now  func() time.Time
}

// NewGenerator creates a statement generator.
func NewGenerator(urns *urn.Generator) *Generator {
	return &Generator{urns: urns, now: time.Now}
}

var componentLabels = map[string]string{
	parser.TypePhan:    "Phan",
	parser.TypeChuong:  "Chuong",
	parser.TypeMuc:     "Muc",
	parser.TypeDieu:    "Dieu",
	parser.TypeKhoan:   "Khoan",
	parser.TypeDiem:    "Diem",
	parser.TypeTieuMuc: "TieuMuc",
}

var documentLabels = map[string]string{
	"HIEN_PHAP":          "HienPhap",
	"BO_LUAT":            "BoLuat",
	"LUAT":               "Luat",
	"NGHI_QUYET_QH":      "NghiQuyetQH",
	"PHAP_LENH":          "PhapLenh",
	"NGHI_QUYET_UBTVQH":  "NghiQuyetUBTVQH",
	"NGHI_DINH":          "NghiDinh",
	"THONG_TU":           "ThongTu",
	"THONG_TU_LIEN_TICH": "ThongTuLienTich",
	"QUYET_DINH":         "QuyetDinh",
	"CHI_THI":            "ChiThi",
	"NGHI_QUYET":         "NghiQuyet",
}

// Legal hierarchy level of each document type, 1 = highest authority.
var legalHierarchy = map[string]int{
	"HIEN_PHAP":            1,
	"BO_LUAT":              2,
	"LUAT":                 3,
	"NGHI_QUYET_QH":        4,
	"PHAP_LENH":            5,
	"NGHI_QUYET_UBTVQH":    6,
	"NGHI_DINH":            7,
	"THONG_TU":             8,
	"THONG_TU_LIEN_TICH":   8,
	"QUYET_DINH_TTG":       9,
	"QUYET_DINH_BO_TRUONG": 10,
	"QUYET_DINH_CHU_TICH":  11,
	"QUYET_DINH":           12,
	"CHI_THI":              13,
	"NGHI_QUYET":           14,
}

// Generate builds the full import script for a parsed document keyed by its
// persistent identifier.
func (g *Generator) Generate(doc *parser.ParsedDocument, documentURN string, opts Options) string {
	if opts.Mode == "" {
		opts.Mode = ModeBasic
	}

	w := &scriptWriter{}
	md := doc.Metadata

	title := md.TieuDe
	if title == "" {
		title = "Unknown"
	}
	w.comment("Vietnamese Legal Document Import")
	w.comment("Generated: " + g.now().UTC().Format(time.RFC3339))
	w.comment("Document: " + title)
	w.comment("Document URN: " + documentURN)
	w.comment("Document Type: " + md.LoaiVanBan)
	w.blank()

	g.writeDocumentNode(w, md, documentURN, opts)

	if opts.Mode == ModeEnhanced && md.CoQuanBanHanh != "" {
		g.writeAuthority(w, md, documentURN)
	}

	w.comment("Component Hierarchy")
	w.blank()
	g.writeComponents(w, doc.Structure, documentURN, documentURN, "VanBan", opts)

	if opts.Mode == ModeEnhanced {
		g.writeTemporalVersions(w, doc, documentURN)
		if opts.IncludeEvents {
			g.writeEvent(w, md, documentURN)
		}
		g.writeReferences(w, doc.CrossReferences, documentURN)
		g.writeSummary(w, doc, documentURN)
	}

	return w.String()
}

func (g *Generator) writeDocumentNode(w *scriptWriter, md parser.Metadata, documentURN string, opts Options) {
	w.comment("Create VanBan (Document Work)")
	w.linef("MERGE (vb:VanBan {urn: %s})", quote(documentURN))
	if opts.Mode == ModeEnhanced {
		if label, ok := documentLabels[md.LoaiVanBan]; ok {
			w.linef("SET vb:%s", label)
		}
	}
	fields := []string{
		fmt.Sprintf("vb.loaiVanBan = %s", quote(md.LoaiVanBan)),
		fmt.Sprintf("vb.tenGoi = %s", quoteOrNull(md.TieuDe)),
		fmt.Sprintf("vb.soHieu = %s", quoteOrNull(md.SoHieu)),
		fmt.Sprintf("vb.ngayBanHanh = %s", dateOrNull(md.NgayBanHanh)),
		fmt.Sprintf("vb.coQuanBanHanh = %s", quoteOrNull(md.CoQuanBanHanh)),
		fmt.Sprintf("vb.hanhDongLapPhap = %s", quote(md.HanhDongLapPhap)),
	}
	if opts.Mode == ModeEnhanced {
		workID := g.urns.WorkID(md.LoaiVanBan, md.NgayBanHanh, md.SoHieu)
		fields = append(fields,
			fmt.Sprintf("vb.workId = %s", quote(workID)),
			fmt.Sprintf("vb.capPhapLy = %d", hierarchyLevel(md.LoaiVanBan)),
			"vb.trangThai = 'HIEU_LUC'",
		)
	}
	w.assign(fields)
	w.blank()
}

func (g *Generator) writeAuthority(w *scriptWriter, md parser.Metadata, documentURN string) {
	w.comment("Create CoQuanBanHanh (Issuing Authority)")
	w.linef("MERGE (cq:CoQuanBanHanh {coQuanId: %s})", quote(md.CoQuanBanHanh))
	w.assign([]string{
		fmt.Sprintf("cq.tenDayDu = %s", quote(authorityName(md.CoQuanBanHanh))),
		fmt.Sprintf("cq.tenVietTat = %s", quote(md.CoQuanBanHanh)),
	})
	w.blank()

	w.comment("Link VanBan to Authority")
	w.linef("MATCH (vb:VanBan {urn: %s})", quote(documentURN))
	w.linef("MATCH (cq:CoQuanBanHanh {coQuanId: %s})", quote(md.CoQuanBanHanh))
	w.line("MERGE (vb)-[r:ISSUED_BY]->(cq)")
	w.assign([]string{fmt.Sprintf("r.ngayBanHanh = %s", dateOrNull(md.NgayBanHanh))})
	w.blank()
}

// writeComponents walks the tree depth-first in sibling order: component
// upsert first, then the hierarchy edge from its parent, then children.
func (g *Generator) writeComponents(w *scriptWriter, nodes []*parser.Component, documentURN, parentURN, parentLabel string, opts Options) {
	for idx, node := range nodes {
		componentURN := g.urns.ComponentURN(documentURN, node.Type, node.Ordinal)
		label := componentLabel(node.Type)

		w.commentf("%s %s", node.Type, node.Ordinal)
		w.linef("MERGE (c:%s:ThanhPhanVanBan {urn: %s})", label, quote(componentURN))
		w.assign([]string{
			fmt.Sprintf("c.loaiThanhPhan = %s", quote(node.Type)),
			fmt.Sprintf("c.soDinhDanh = %s", quote(node.Ordinal)),
			fmt.Sprintf("c.tieuDe = %s", quoteOrNull(node.Title)),
			fmt.Sprintf("c.noiDung = %s", quoteOrNull(renderBody(node.Body))),
			fmt.Sprintf("c.capBac = %d", node.Level),
		})
		w.blank()

		w.linef("MATCH (p:%s {urn: %s})", parentLabel, quote(parentURN))
		w.linef("MATCH (c:ThanhPhanVanBan {urn: %s})", quote(componentURN))
		w.line("MERGE (p)-[r:HAS_COMPONENT]->(c)")
		w.assign([]string{fmt.Sprintf("r.thuTuSapXep = %d", idx)})
		w.blank()

		g.writeComponents(w, node.Children, documentURN, componentURN, "ThanhPhanVanBan", opts)
	}
}

// writeTemporalVersions emits the initial PhienBanVanBan plus one CTV per
// component, aggregated under the version. Skipped when no issuance date was
// detected: temporal keys would otherwise not be derivable from the input.
func (g *Generator) writeTemporalVersions(w *scriptWriter, doc *parser.ParsedDocument, documentURN string) {
	date := doc.Metadata.NgayBanHanh
	if date == "" {
		w.comment("No issuance date detected - temporal versions skipped")
		w.blank()
		return
	}

	versionURN := g.urns.VersionURN(documentURN, date)
	workID := g.urns.WorkID(doc.Metadata.LoaiVanBan, date, doc.Metadata.SoHieu)

	w.comment("Create Initial Temporal Version")
	w.linef("MATCH (vb:VanBan {urn: %s})", quote(documentURN))
	w.linef("MERGE (tv:PhienBanVanBan {urn: %s})", quote(versionURN))
	w.assign([]string{
		fmt.Sprintf("tv.expressionId = %s", quote(workID+"-TV-"+compactDate(date))),
		fmt.Sprintf("tv.ngayHieuLuc = date(%s)", quote(date)),
		"tv.ngayHetHieuLuc = date('9999-12-31')",
		"tv.loaiPhienBan = 'BAN_DAU'",
		"tv.soThanhPhanThayDoi = 0",
	})
	w.line("MERGE (vb)-[:HAS_EXPRESSION]->(tv);")
	w.blank()

	w.comment("Create Component Temporal Versions (CTVs)")
	g.writeCTVs(w, doc.Structure, documentURN, date)

	w.comment("Aggregate CTVs under the Temporal Version")
	w.linef("MATCH (tv:PhienBanVanBan {urn: %s})", quote(versionURN))
	w.linef("MATCH (vb:VanBan {urn: %s})", quote(documentURN))
	w.line("MATCH (vb)-[:HAS_COMPONENT*1..7]->(tp:ThanhPhanVanBan)")
	w.line("MATCH (tp)-[:HAS_EXPRESSION]->(ctv:CTV)")
	w.linef("WHERE ctv.ngayHieuLuc = date(%s)", quote(date))
	w.line("MERGE (tv)-[agg:AGGREGATES]->(ctv)")
	w.assign([]string{
		fmt.Sprintf("agg.ngayHieuLuc = date(%s)", quote(date)),
		"agg.thayDoi = false",
	})
	w.blank()
}

func (g *Generator) writeCTVs(w *scriptWriter, nodes []*parser.Component, documentURN, date string) {
	for _, node := range nodes {
		componentURN := g.urns.ComponentURN(documentURN, node.Type, node.Ordinal)
		ctvURN := g.urns.VersionURN(componentURN, date)

		w.commentf("CTV for %s %s", node.Type, node.Ordinal)
		w.linef("MATCH (tp:ThanhPhanVanBan {urn: %s})", quote(componentURN))
		w.linef("MERGE (ctv:CTV {urn: %s})", quote(ctvURN))
		w.assign([]string{
			fmt.Sprintf("ctv.ngayHieuLuc = date(%s)", quote(date)),
			"ctv.ngayHetHieuLuc = date('9999-12-31')",
			fmt.Sprintf("ctv.noiDung = %s", quoteOrNull(renderBody(node.Body))),
			"ctv.trangThai = 'HIEU_LUC'",
			"ctv.loaiThayDoi = null",
		})
		w.line("MERGE (tp)-[:HAS_EXPRESSION]->(ctv);")
		w.blank()

		g.writeCTVs(w, node.Children, documentURN, date)
	}
}

// writeEvent emits a SuKienLapPhap node for non-issuance actions; for plain
// promulgation the event is implicit in the document node itself.
func (g *Generator) writeEvent(w *scriptWriter, md parser.Metadata, documentURN string) {
	if md.HanhDongLapPhap == "" || md.HanhDongLapPhap == parser.DefaultAction {
		return
	}

	workID := g.urns.WorkID(md.LoaiVanBan, md.NgayBanHanh, md.SoHieu)
	eventID := fmt.Sprintf("EVT-%s-%s", md.HanhDongLapPhap, workID)

	w.comment("Create SuKienLapPhap (Legislative Event)")
	w.linef("MERGE (evt:SuKienLapPhap {eventId: %s})", quote(eventID))
	w.assign([]string{
		fmt.Sprintf("evt.loaiSuKien = %s", quote(md.HanhDongLapPhap)),
		fmt.Sprintf("evt.ngaySuKien = %s", dateOrNull(md.NgayBanHanh)),
		fmt.Sprintf("evt.vanBanDoiTuong = %s", quote(documentURN)),
	})
	w.blank()

	w.linef("MATCH (vb:VanBan {urn: %s})", quote(documentURN))
	w.linef("MATCH (evt:SuKienLapPhap {eventId: %s})", quote(eventID))
	w.line("MERGE (vb)-[:TRIGGERS]->(evt)")
	w.terminate()
	w.blank()
}

func (g *Generator) writeReferences(w *scriptWriter, refs []string, documentURN string) {
	if len(refs) == 0 {
		return
	}

	w.comment("Create Cross-References")
	for _, ref := range refs {
		targetURN := g.urns.ReferenceURN(ref)
		w.linef("MERGE (ref:VanBanThamChieu {urn: %s})", quote(targetURN))
		w.assign([]string{fmt.Sprintf("ref.noiDung = %s", quote(ref))})
		w.linef("MATCH (vb:VanBan {urn: %s})", quote(documentURN))
		w.linef("MATCH (ref:VanBanThamChieu {urn: %s})", quote(targetURN))
		w.line("MERGE (vb)-[:THAM_CHIEU]->(ref)")
		w.terminate()
		w.blank()
	}
}

func (g *Generator) writeSummary(w *scriptWriter, doc *parser.ParsedDocument, documentURN string) {
	count := parser.CountComponents(doc.Structure)
	w.comment("Import Summary")
	w.commentf("Document URN: %s", documentURN)
	w.commentf("Components: %d", count)
	w.commentf("Cross-references: %d", len(doc.CrossReferences))
}

func componentLabel(componentType string) string {
	if label, ok := componentLabels[componentType]; ok {
		return label
	}
	return "ThanhPhanVanBan"
}

func hierarchyLevel(docType string) int {
	if level, ok := legalHierarchy[docType]; ok {
		return level
	}
	return 15
}

func authorityName(code string) string {
	switch code {
	case "CHINH_PHU":
		return "Chính phủ"
	case "QUOC_HOI":
		return "Quốc hội"
	}
	return code
}

// renderBody collapses internal newlines to single spaces and truncates to
// MaxBodyLength runes.
func renderBody(body string) string {
	if body == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(body), " ")
	runes := []rune(collapsed)
	if len(runes) > MaxBodyLength {
		return string(runes[:MaxBodyLength-3]) + "..."
	}
	return collapsed
}

func escapeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

func quote(s string) string {
	return "'" + escapeValue(s) + "'"
}

// quoteOrNull renders an absent optional field as an explicit null rather
// than omitting the property.
func quoteOrNull(s string) string {
	if s == "" {
		return "null"
	}
	return quote(s)
}

func dateOrNull(isoDate string) string {
	if isoDate == "" {
		return "null"
	}
	return fmt.Sprintf("date(%s)", quote(isoDate))
}

func compactDate(isoDate string) string {
	return strings.ReplaceAll(isoDate, "-", "")
}
