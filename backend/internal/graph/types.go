package graph

// DocumentRecord summarizes a stored VanBan node.
type DocumentRecord struct {
	URN             string `json:"urn"`
	WorkID          string `json:"workId"`
	LoaiVanBan      string `json:"loaiVanBan"`
	SoHieu          string `json:"soHieu"`
	NgayBanHanh     string `json:"ngayBanHanh"`
	HanhDongLapPhap string `json:"hanhDongLapPhap"`
	ComponentCount  int64  `json:"componentCount"`
}

// ArticleVersion is the point-in-time view of a single article.
type ArticleVersion struct {
	TieuDe      string `json:"tieuDe"`
	NoiDung     string `json:"noiDung"`
	NgayHieuLuc string `json:"ngayHieuLuc"`
}

// ComponentRow is one row of a reconstructed document, ordered by hierarchy
// level and sibling position.
type ComponentRow struct {
	LoaiThanhPhan string `json:"loaiThanhPhan"`
	SoDinhDanh    string `json:"soDinhDanh"`
	TieuDe        string `json:"tieuDe"`
	NoiDung       string `json:"noiDung"`
	CapBac        int64  `json:"capBac"`
	ThuTu         int64  `json:"thuTu"`
}

// VersionRow is one entry of a document's temporal version history.
type VersionRow struct {
	NgayHieuLuc    string `json:"ngayHieuLuc"`
	NgayHetHieuLuc string `json:"ngayHetHieuLuc"`
	LoaiPhienBan   string `json:"loaiPhienBan"`
}

// ChangeRow is one amended component version within a queried period.
type ChangeRow struct {
	LoaiThanhPhan string `json:"loaiThanhPhan"`
	SoDinhDanh    string `json:"soDinhDanh"`
	TieuDe        string `json:"tieuDe"`
	NgayThayDoi   string `json:"ngayThayDoi"`
	LoaiThayDoi   string `json:"loaiThayDoi"`
	NoiDungMoi    string `json:"noiDungMoi"`
}

// SearchHit is one full-text search result, highest score first.
type SearchHit struct {
	URN     string   `json:"urn"`
	NoiDung string   `json:"noiDung"`
	Nhan    []string `json:"nhan"`
	Score   float64  `json:"score"`
}
