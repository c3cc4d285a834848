package parser

// Component type codes for the 7-tier hierarchy of Vietnamese legal documents.
const (
	TypePhan    = "PHAN"     // Phần (Part)
	TypeChuong  = "CHUONG"   // Chương (Chapter)
	TypeMuc     = "MUC"      // Mục (Section)
	TypeDieu    = "DIEU"     // Điều (Article)
	TypeKhoan   = "KHOAN"    // Khoản (Clause)
	TypeDiem    = "DIEM"     // Điểm (Point)
	TypeTieuMuc = "TIEU_MUC" // Tiểu mục (Sub-section)
)

// DefaultDocType is used when no document type pattern matches.
const DefaultDocType = "VAN_BAN"

// DefaultAction is the legislative action assumed when no keyword matches.
const DefaultAction = "BAN_HANH"

// Component is a node in the parsed document hierarchy. Ordinals are only
// unique among siblings; Level follows the 7-tier table (PHAN=1 .. TIEU_MUC=7).
type Component struct {
	Type     string       `json:"loaiThanhPhan"`
	Ordinal  string       `json:"soDinhDanh"`
	Title    string       `json:"tieuDe,omitempty"`
	Body     string       `json:"noiDung,omitempty"`
	Level    int          `json:"capBac"`
	Order    int          `json:"thuTu"`
	Children []*Component `json:"children,omitempty"`
}

// Metadata holds the classification results for a document. Empty string means
// the field could not be extracted.
type Metadata struct {
	LoaiVanBan      string `json:"loaiVanBan"`
	TieuDe          string `json:"tieuDe,omitempty"`
	SoHieu          string `json:"soHieu,omitempty"`
	NgayBanHanh     string `json:"ngayBanHanh,omitempty"`
	CoQuanBanHanh   string `json:"coQuanBanHanh,omitempty"`
	HanhDongLapPhap string `json:"hanhDongLapPhap"`
}

// ParsedDocument is the complete result of a parse invocation. DinhNghia maps
// each defined term to its definition text, taken from the interpretation
// article.
type ParsedDocument struct {
	Metadata        Metadata          `json:"metadata"`
	Structure       []*Component      `json:"structure"`
	CrossReferences []string          `json:"crossReferences"`
	DinhNghia       map[string]string `json:"dinhNghia"`
}
