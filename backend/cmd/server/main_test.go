package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"lexgraph/backend/internal/cypher"
	"lexgraph/backend/internal/urn"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestParseEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/parse", parseHandler())

	body, _ := json.Marshal(gin.H{
		"text": "NGHỊ ĐỊNH\nSố: 30/2020/NĐ-CP\nChính phủ ban hành Nghị định ngày 5 tháng 3 năm 2020.\nĐiều 1. Phạm vi điều chỉnh\n1. Khoản một.\n2. Khoản hai.",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/parse", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		RecordID string `json:"recordId"`
		Metadata struct {
			LoaiVanBan  string `json:"loaiVanBan"`
			SoHieu      string `json:"soHieu"`
			NgayBanHanh string `json:"ngayBanHanh"`
		} `json:"metadata"`
		Structure []struct {
			Type     string            `json:"loaiThanhPhan"`
			Ordinal  string            `json:"soDinhDanh"`
			Children []json.RawMessage `json:"children"`
		} `json:"structure"`
		ComponentCount int `json:"componentCount"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.RecordID)
	assert.Equal(t, "NGHI_DINH", response.Metadata.LoaiVanBan)
	assert.Equal(t, "30/2020/NĐ-CP", response.Metadata.SoHieu)
	assert.Equal(t, "2020-03-05", response.Metadata.NgayBanHanh)
	assert.Len(t, response.Structure, 1)
	assert.Equal(t, "DIEU", response.Structure[0].Type)
	assert.Len(t, response.Structure[0].Children, 2)
	assert.Equal(t, 3, response.ComponentCount)
}

func TestParseEndpoint_Definitions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/parse", parseHandler())

	body, _ := json.Marshal(gin.H{
		"text": "LUẬT\nĐiều 3. Giải thích từ ngữ\n1. \"Văn thư\" là công tác quản lý văn bản.",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/parse", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		DinhNghia map[string]string `json:"dinhNghia"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "công tác quản lý văn bản.", response.DinhNghia["Văn thư"])
}

func TestParseEndpoint_MissingText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/parse", parseHandler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/parse", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseBatchEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/parse/batch", parseBatchHandler())

	body, _ := json.Marshal(gin.H{
		"documents": []string{
			"NGHỊ ĐỊNH\nĐiều 1. Một",
			"THÔNG TƯ\nĐiều 1. Hai",
		},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/parse/batch", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Count   int `json:"count"`
		Results []struct {
			Metadata struct {
				LoaiVanBan string `json:"loaiVanBan"`
			} `json:"metadata"`
		} `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	// Input order preserved regardless of completion order
	assert.Equal(t, "NGHI_DINH", response.Results[0].Metadata.LoaiVanBan)
	assert.Equal(t, "THONG_TU", response.Results[1].Metadata.LoaiVanBan)
}

func TestURNEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/urn", urnHandler(urn.NewGenerator()))

	body, _ := json.Marshal(gin.H{
		"text": "NGHỊ ĐỊNH\nSố: 30/2020/NĐ-CP\nChính phủ ban hành ngày 5 tháng 3 năm 2020.",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/urn", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "urn:lex:vn:chinhphu:nghidinh:2020-03-05;30-2020-nd-cp", response["urn"])
	assert.Equal(t, "NGHIDINH-2020-30", response["workId"])
}

func TestURNEndpoint_ParseExisting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/urn", urnHandler(urn.NewGenerator()))

	body, _ := json.Marshal(gin.H{
		"urn": "urn:lex:vn:chinhphu:nghidinh:2020-03-05;30-2020-nd-cp#dieu1",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/urn", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Parts struct {
			Authority string `json:"authority"`
			Component string `json:"component"`
		} `json:"parts"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "chinhphu", response.Parts.Authority)
	assert.Equal(t, "dieu1", response.Parts.Component)
}

func TestURNEndpoint_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/urn", urnHandler(urn.NewGenerator()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/urn", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCypherEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	urns := urn.NewGenerator()
	router.POST("/api/cypher", cypherHandler(urns, cypher.NewGenerator(urns)))

	body, _ := json.Marshal(gin.H{
		"text": "NGHỊ ĐỊNH\nSố: 30/2020/NĐ-CP\nChính phủ ban hành ngày 5 tháng 3 năm 2020.\nĐiều 1. Phạm vi",
		"mode": "enhanced",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/cypher", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		URN            string  `json:"urn"`
		Cypher         string  `json:"cypher"`
		ComponentCount float64 `json:"componentCount"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.Cypher, "MERGE (vb:VanBan")
	assert.Contains(t, response.Cypher, "PhienBanVanBan")
	assert.Equal(t, "urn:lex:vn:chinhphu:nghidinh:2020-03-05;30-2020-nd-cp", response.URN)
	assert.Equal(t, float64(1), response.ComponentCount)
}

func TestCypherEndpoint_MissingText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	urns := urn.NewGenerator()
	router.POST("/api/cypher", cypherHandler(urns, cypher.NewGenerator(urns)))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/cypher", bytes.NewBuffer([]byte(`{"mode":"basic"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
