package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"lexgraph/backend/internal/cypher"
	pkgerrors "lexgraph/backend/pkg/errors"
	"lexgraph/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// ImportScript executes a generated import script against the store, one
// write transaction for the whole script. Returns the number of statements
// executed.
func (r *Repository) ImportScript(ctx context.Context, script string) (int, error) {
	statements := cypher.Split(script)
	if len(statements) == 0 {
		return 0, nil
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, stmt := range statements {
			if _, err := tx.Run(ctx, stmt, nil); err != nil {
				return nil, pkgerrors.NewImportFailed(stmt, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Import script executed",
		zap.Int("statements", len(statements)),
	)
	return len(statements), nil
}

// ListDocuments returns all imported documents with their component counts.
func (r *Repository) ListDocuments(ctx context.Context) ([]DocumentRecord, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (vb:VanBan)
		OPTIONAL MATCH (vb)-[:HAS_COMPONENT*1..7]->(tp:ThanhPhanVanBan)
		RETURN vb.urn as urn,
		       vb.workId as workId,
		       vb.loaiVanBan as loaiVanBan,
		       vb.soHieu as soHieu,
		       toString(vb.ngayBanHanh) as ngayBanHanh,
		       vb.hanhDongLapPhap as hanhDongLapPhap,
		       count(tp) as componentCount
		ORDER BY vb.urn
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, pkgerrors.NewGraphQueryFailed(query, err)
	}

	var docs []DocumentRecord
	for result.Next(ctx) {
		record := result.Record()
		docs = append(docs, DocumentRecord{
			URN:             getString(record, "urn", ""),
			WorkID:          getString(record, "workId", ""),
			LoaiVanBan:      getString(record, "loaiVanBan", ""),
			SoHieu:          getString(record, "soHieu", ""),
			NgayBanHanh:     getString(record, "ngayBanHanh", ""),
			HanhDongLapPhap: getString(record, "hanhDongLapPhap", ""),
			ComponentCount:  getInt64(record, "componentCount", 0),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	return docs, nil
}

// ArticleAtDate retrieves a specific article of a document as it was in force
// on the target date.
func (r *Repository) ArticleAtDate(ctx context.Context, workID, articleNumber, targetDate string) (*ArticleVersion, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (dieu:Dieu {soDinhDanh: $articleNumber})
		  <-[:HAS_COMPONENT*1..3]-(vb:VanBan {workId: $workId})
		MATCH (dieu)-[:HAS_EXPRESSION]->(ctv:CTV)
		WHERE ctv.ngayHieuLuc <= date($targetDate)
		  AND ctv.ngayHetHieuLuc >= date($targetDate)
		  AND ctv.trangThai = 'HIEU_LUC'
		RETURN dieu.tieuDe as tieuDe,
		       ctv.noiDung as noiDung,
		       toString(ctv.ngayHieuLuc) as ngayHieuLuc
		ORDER BY ctv.ngayHieuLuc DESC
		LIMIT 1
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"workId":        workID,
		"articleNumber": articleNumber,
		"targetDate":    targetDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
		return nil, ErrDocumentNotFound{WorkID: workID}
	}

	record := result.Record()
	return &ArticleVersion{
		TieuDe:      getString(record, "tieuDe", ""),
		NoiDung:     getString(record, "noiDung", ""),
		NgayHieuLuc: getString(record, "ngayHieuLuc", ""),
	}, nil
}

// ReconstructDocument returns every component of a document as in force on
// the target date, in hierarchy order.
func (r *Repository) ReconstructDocument(ctx context.Context, workID, targetDate string) ([]ComponentRow, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		WITH date($targetDate) as targetDate
		MATCH (vb:VanBan {workId: $workId})
		MATCH (vb)-[:HAS_EXPRESSION]->(tv:PhienBanVanBan)
		WHERE tv.ngayHieuLuc <= targetDate
		  AND tv.ngayHetHieuLuc >= targetDate
		MATCH (tv)-[:AGGREGATES]->(ctv:CTV)
		MATCH (ctv)<-[:HAS_EXPRESSION]-(tp:ThanhPhanVanBan)
		WHERE ctv.trangThai = 'HIEU_LUC'
		RETURN tp.loaiThanhPhan as loaiThanhPhan,
		       tp.soDinhDanh as soDinhDanh,
		       tp.tieuDe as tieuDe,
		       ctv.noiDung as noiDung,
		       tp.capBac as capBac,
		       coalesce(tp.thuTuSapXep, 0) as thuTu
		ORDER BY tp.capBac, thuTu
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"workId":     workID,
		"targetDate": targetDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var rows []ComponentRow
	for result.Next(ctx) {
		record := result.Record()
		rows = append(rows, ComponentRow{
			LoaiThanhPhan: getString(record, "loaiThanhPhan", ""),
			SoDinhDanh:    getString(record, "soDinhDanh", ""),
			TieuDe:        getString(record, "tieuDe", ""),
			NoiDung:       getString(record, "noiDung", ""),
			CapBac:        getInt64(record, "capBac", 0),
			ThuTu:         getInt64(record, "thuTu", 0),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read components: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrDocumentNotFound{WorkID: workID}
	}
	return rows, nil
}

// VersionHistory returns the temporal versions of a document in effective
// date order.
func (r *Repository) VersionHistory(ctx context.Context, workID string) ([]VersionRow, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (vb:VanBan {workId: $workId})
		MATCH (vb)-[:HAS_EXPRESSION]->(tv:PhienBanVanBan)
		RETURN toString(tv.ngayHieuLuc) as ngayHieuLuc,
		       toString(tv.ngayHetHieuLuc) as ngayHetHieuLuc,
		       tv.loaiPhienBan as loaiPhienBan
		ORDER BY tv.ngayHieuLuc
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"workId": workID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var versions []VersionRow
	for result.Next(ctx) {
		record := result.Record()
		versions = append(versions, VersionRow{
			NgayHieuLuc:    getString(record, "ngayHieuLuc", ""),
			NgayHetHieuLuc: getString(record, "ngayHetHieuLuc", ""),
			LoaiPhienBan:   getString(record, "loaiPhienBan", ""),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}

	return versions, nil
}

// ChangesInPeriod returns the component versions of a document that record an
// amendment taking effect inside the date range. Initial versions carry a
// null loaiThayDoi and are excluded.
func (r *Repository) ChangesInPeriod(ctx context.Context, workID, startDate, endDate string) ([]ChangeRow, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		WITH date($startDate) as startDate, date($endDate) as endDate
		MATCH (vb:VanBan {workId: $workId})
		MATCH (vb)-[:HAS_COMPONENT*1..7]->(tp:ThanhPhanVanBan)
		MATCH (tp)-[:HAS_EXPRESSION]->(ctv:CTV)
		WHERE ctv.ngayHieuLuc >= startDate
		  AND ctv.ngayHieuLuc <= endDate
		  AND ctv.loaiThayDoi IS NOT NULL
		RETURN tp.loaiThanhPhan as loaiThanhPhan,
		       tp.soDinhDanh as soDinhDanh,
		       tp.tieuDe as tieuDe,
		       toString(ctv.ngayHieuLuc) as ngayThayDoi,
		       ctv.loaiThayDoi as loaiThayDoi,
		       ctv.noiDung as noiDungMoi
		ORDER BY ctv.ngayHieuLuc, tp.capBac
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"workId":    workID,
		"startDate": startDate,
		"endDate":   endDate,
	})
	if err != nil {
		return nil, pkgerrors.NewGraphQueryFailed(query, err)
	}

	var changes []ChangeRow
	for result.Next(ctx) {
		record := result.Record()
		changes = append(changes, ChangeRow{
			LoaiThanhPhan: getString(record, "loaiThanhPhan", ""),
			SoDinhDanh:    getString(record, "soDinhDanh", ""),
			TieuDe:        getString(record, "tieuDe", ""),
			NgayThayDoi:   getString(record, "ngayThayDoi", ""),
			LoaiThayDoi:   getString(record, "loaiThayDoi", ""),
			NoiDungMoi:    getString(record, "noiDungMoi", ""),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read changes: %w", err)
	}

	return changes, nil
}

// FullTextSearch queries the noi_dung_van_ban full-text index over document
// titles and component text, best matches first.
func (r *Repository) FullTextSearch(ctx context.Context, term string, limit int) ([]SearchHit, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		CALL db.index.fulltext.queryNodes('noi_dung_van_ban', $term)
		YIELD node, score
		RETURN node.urn as urn,
		       CASE
		         WHEN node:VanBan THEN coalesce(node.tenGoi, node.loaiVanBan)
		         ELSE coalesce(node.tieuDe, node.noiDung)
		       END as noiDung,
		       labels(node) as nhan,
		       score
		ORDER BY score DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"term":  term,
		"limit": limit,
	})
	if err != nil {
		return nil, pkgerrors.NewGraphQueryFailed(query, err)
	}

	var hits []SearchHit
	for result.Next(ctx) {
		record := result.Record()
		hits = append(hits, SearchHit{
			URN:     getString(record, "urn", ""),
			NoiDung: getString(record, "noiDung", ""),
			Nhan:    getStringSlice(record, "nhan"),
			Score:   getFloat64(record, "score", 0),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	return hits, nil
}

// Helper functions

func getString(record *neo4j.Record, key string, defaultValue string) string {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getInt64(record *neo4j.Record, key string, defaultValue int64) int64 {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if n, ok := val.(int64); ok {
		return n
	}
	return defaultValue
}

func getFloat64(record *neo4j.Record, key string, defaultValue float64) float64 {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if f, ok := val.(float64); ok {
		return f
	}
	return defaultValue
}

func getStringSlice(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok {
		return nil
	}
	items, ok := val.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Errors

type ErrDocumentNotFound struct {
	WorkID string
}

func (e ErrDocumentNotFound) Error() string {
	return fmt.Sprintf("document not found: %s", e.WorkID)
}
