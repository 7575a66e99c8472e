package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
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

func TestRepositoriesEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Mock endpoint mirroring the repository listing shape
	router.GET("/api/repositories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"repositories": []string{"linqs", "networkrepository", "string", "yue"}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/repositories", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Repositories []string `json:"repositories"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Repositories, 4)
	assert.Contains(t, response.Repositories, "networkrepository")
}

func TestRetrieveEndpoint_OptionalBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Mock endpoint: the request body is optional and defaults to an
	// undirected retrieval without export
	router.POST("/api/repositories/:repo/graphs/:name/retrieve", func(c *gin.Context) {
		var req struct {
			Directed bool `json:"directed"`
			Export   bool `json:"export"`
		}
		_ = c.ShouldBindJSON(&req)
		c.JSON(http.StatusOK, gin.H{
			"graph":    c.Param("name"),
			"directed": req.Directed,
			"exported": req.Export,
		})
	})

	// No body
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/repositories/yue/graphs/CTDDDA/retrieve", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Directed with export
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/repositories/yue/graphs/CTDDDA/retrieve",
		bytes.NewBuffer([]byte(`{"directed": true, "export": true}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["directed"])
	assert.Equal(t, true, response["exported"])
}
