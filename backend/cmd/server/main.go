package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"lexgraph/backend/internal/assistant"
	"lexgraph/backend/internal/cypher"
	"lexgraph/backend/internal/graph"
	"lexgraph/backend/internal/parser"
	"lexgraph/backend/internal/urn"
	"lexgraph/backend/pkg/config"
	"lexgraph/backend/pkg/logger"
)

const batchConcurrency = 4

func main() {
	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

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

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Initialize dependencies
	graphRepo := graph.NewRepository(driver)
	urns := urn.NewGenerator()
	statements := cypher.NewGenerator(urns)
	asst := assistant.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/parse", parseHandler())
		api.POST("/parse/batch", parseBatchHandler())
		api.POST("/urn", urnHandler(urns))
		api.POST("/cypher", cypherHandler(urns, statements))

		// Generate the import script and run it against the graph
		api.POST("/import", func(c *gin.Context) {
			var req cypherRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			doc := parser.Parse(req.Text)
			md := doc.Metadata
			documentURN := urns.DocumentURN(md.LoaiVanBan, md.CoQuanBanHanh, md.NgayBanHanh, md.SoHieu)
			script := statements.Generate(doc, documentURN, cypher.Options{
				Mode:          cypher.Mode(req.Mode),
				IncludeEvents: req.IncludeEvents,
			})

			count, err := graphRepo.ImportScript(c.Request.Context(), script)
			if err != nil {
				log.Error("Failed to import document", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import document"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"urn":        documentURN,
				"workId":     urns.WorkID(md.LoaiVanBan, md.NgayBanHanh, md.SoHieu),
				"statements": count,
			})
		})

		// List imported documents
		api.GET("/documents", func(c *gin.Context) {
			docs, err := graphRepo.ListDocuments(c.Request.Context())
			if err != nil {
				log.Error("Failed to list documents", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
		})

		// Point-in-time view of one article
		api.GET("/documents/:workId/articles/:number", func(c *gin.Context) {
			workID := c.Param("workId")
			number := c.Param("number")
			date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

			article, err := graphRepo.ArticleAtDate(c.Request.Context(), workID, number, date)
			if err != nil {
				if _, ok := err.(graph.ErrDocumentNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
					return
				}
				log.Error("Failed to fetch article", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch article"})
				return
			}
			c.JSON(http.StatusOK, article)
		})

		// Full document reconstruction at a date
		api.GET("/documents/:workId/reconstruct", func(c *gin.Context) {
			workID := c.Param("workId")
			date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

			rows, err := graphRepo.ReconstructDocument(c.Request.Context(), workID, date)
			if err != nil {
				if _, ok := err.(graph.ErrDocumentNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
					return
				}
				log.Error("Failed to reconstruct document", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconstruct document"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"workId": workID, "date": date, "components": rows})
		})

		// Amendments taking effect inside a date range
		api.GET("/documents/:workId/changes", func(c *gin.Context) {
			workID := c.Param("workId")
			from := c.DefaultQuery("from", "1945-09-02")
			to := c.DefaultQuery("to", time.Now().Format("2006-01-02"))

			changes, err := graphRepo.ChangesInPeriod(c.Request.Context(), workID, from, to)
			if err != nil {
				log.Error("Failed to fetch changes", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch changes"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"workId": workID, "from": from, "to": to, "changes": changes})
		})

		// Full-text search over titles and component text
		api.GET("/search", func(c *gin.Context) {
			term := c.Query("q")
			if term == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
				return
			}
			limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
			if err != nil || limit < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}

			hits, err := graphRepo.FullTextSearch(c.Request.Context(), term, limit)
			if err != nil {
				log.Error("Failed to search", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"query": term, "hits": hits, "count": len(hits)})
		})

		// Version history
		api.GET("/documents/:workId/versions", func(c *gin.Context) {
			workID := c.Param("workId")

			versions, err := graphRepo.VersionHistory(c.Request.Context(), workID)
			if err != nil {
				log.Error("Failed to fetch version history", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch version history"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"workId": workID, "versions": versions})
		})

		// Ask the legal assistant
		api.POST("/chat", func(c *gin.Context) {
			var req struct {
				Question string `json:"question" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			answer, err := asst.Ask(c.Request.Context(), req.Question)
			if err != nil {
				log.Error("Failed to answer question", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer question"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"answer": answer})
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

type cypherRequest struct {
	Text          string `json:"text" binding:"required"`
	Mode          string `json:"mode"`
	IncludeEvents bool   `json:"includeEvents"`
}

// parseHandler runs a document through the parsing pipeline and returns the
// metadata, component tree and cross-references.
func parseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		doc := parser.Parse(req.Text)
		c.JSON(http.StatusOK, gin.H{
			"recordId":        uuid.NewString(),
			"metadata":        doc.Metadata,
			"structure":       doc.Structure,
			"crossReferences": doc.CrossReferences,
			"dinhNghia":       doc.DinhNghia,
			"componentCount":  parser.CountComponents(doc.Structure),
		})
	}
}

// parseBatchHandler parses several documents concurrently, preserving input
// order in the response.
func parseBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Documents []string `json:"documents" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		results := make([]gin.H, len(req.Documents))
		g, _ := errgroup.WithContext(c.Request.Context())
		g.SetLimit(batchConcurrency)
		for i, text := range req.Documents {
			i, text := i, text
			g.Go(func() error {
				doc := parser.Parse(text)
				results[i] = gin.H{
					"recordId":        uuid.NewString(),
					"metadata":        doc.Metadata,
					"structure":       doc.Structure,
					"crossReferences": doc.CrossReferences,
					"dinhNghia":       doc.DinhNghia,
					"componentCount":  parser.CountComponents(doc.Structure),
				}
				return nil
			})
		}
		_ = g.Wait()

		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}

// urnHandler builds (or parses) persistent identifiers. With "text" it
// classifies the document and derives the identifier; with "urn" it splits an
// existing identifier into parts.
func urnHandler(urns *urn.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Text string `json:"text"`
			URN  string `json:"urn"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.URN != "" {
			parts, err := urns.Parse(req.URN)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"urn": req.URN, "parts": parts})
			return
		}

		if req.Text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either text or urn is required"})
			return
		}

		doc := parser.Parse(req.Text)
		md := doc.Metadata
		documentURN := urns.DocumentURN(md.LoaiVanBan, md.CoQuanBanHanh, md.NgayBanHanh, md.SoHieu)
		c.JSON(http.StatusOK, gin.H{
			"urn":      documentURN,
			"workId":   urns.WorkID(md.LoaiVanBan, md.NgayBanHanh, md.SoHieu),
			"metadata": md,
		})
	}
}

// cypherHandler generates the import script without touching the database.
func cypherHandler(urns *urn.Generator, statements *cypher.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cypherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		doc := parser.Parse(req.Text)
		md := doc.Metadata
		documentURN := urns.DocumentURN(md.LoaiVanBan, md.CoQuanBanHanh, md.NgayBanHanh, md.SoHieu)
		script := statements.Generate(doc, documentURN, cypher.Options{
			Mode:          cypher.Mode(req.Mode),
			IncludeEvents: req.IncludeEvents,
		})

		c.JSON(http.StatusOK, gin.H{
			"urn":            documentURN,
			"cypher":         script,
			"componentCount": parser.CountComponents(doc.Structure),
		})
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
