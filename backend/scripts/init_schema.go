package main

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"lexgraph/backend/pkg/config"
	"lexgraph/backend/pkg/logger"
)

// Uniqueness constraints keep repeated imports idempotent: every MERGE keys
// on urn, so urn must be unique per label.
var schemaStatements = []string{
	`CREATE CONSTRAINT vanban_urn IF NOT EXISTS
	 FOR (vb:VanBan) REQUIRE vb.urn IS UNIQUE`,
	`CREATE CONSTRAINT thanhphan_urn IF NOT EXISTS
	 FOR (tp:ThanhPhanVanBan) REQUIRE tp.urn IS UNIQUE`,
	`CREATE CONSTRAINT phienban_urn IF NOT EXISTS
	 FOR (tv:PhienBanVanBan) REQUIRE tv.urn IS UNIQUE`,
	`CREATE CONSTRAINT ctv_urn IF NOT EXISTS
	 FOR (ctv:CTV) REQUIRE ctv.urn IS UNIQUE`,
	`CREATE CONSTRAINT coquan_id IF NOT EXISTS
	 FOR (cq:CoQuanBanHanh) REQUIRE cq.coQuanId IS UNIQUE`,
	`CREATE INDEX vanban_workid IF NOT EXISTS
	 FOR (vb:VanBan) ON (vb.workId)`,
	`CREATE INDEX vanban_loai IF NOT EXISTS
	 FOR (vb:VanBan) ON (vb.loaiVanBan)`,
	`CREATE FULLTEXT INDEX noi_dung_van_ban IF NOT EXISTS
	 FOR (n:VanBan|ThanhPhanVanBan) ON EACH [n.tenGoi, n.tieuDe, n.noiDung]`,
}

func main() {
	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Initializing Neo4j schema...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			log.Fatal("Schema statement failed",
				zap.String("statement", stmt),
				zap.Error(err),
			)
		}
	}

	log.Info("Schema initialized", zap.Int("statements", len(schemaStatements)))
}
