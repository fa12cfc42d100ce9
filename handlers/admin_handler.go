package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egor/vicai/config"
)

// Keywords returns the lists currently in force.
func (h *Handler) Keywords(c *gin.Context) {
	c.JSON(http.StatusOK, h.Gateway.Keywords())
}

// ReloadKeywords rereads KEYWORDS_FILE and swaps the lists. On error the
// old lists stay.
func (h *Handler) ReloadKeywords(c *gin.Context) {
	k, err := config.LoadKeywords(h.KeywordsFile)
	if err != nil {
		h.Log.Error("keyword reload failed", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "reload failed", "detail": err.Error()})
		return
	}
	h.Gateway.Reload(k)
	c.JSON(http.StatusOK, gin.H{
		"reloaded": true,
		"source":   sourceName(h.KeywordsFile),
		"keywords": k,
	})
}

func sourceName(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}
