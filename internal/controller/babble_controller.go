package controller

import (
	"net/http"
	"strconv"

	"babble-go/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BabbleController struct {
	babbleService *service.BabbleService
	logger        *zap.Logger
}

func NewBabbleController(babbleService *service.BabbleService, logger *zap.Logger) *BabbleController {
	return &BabbleController{
		babbleService: babbleService,
		logger:        logger,
	}
}

type BabbleRequest struct {
	Start string `json:"start"`
}

func (bc *BabbleController) Babble(c *gin.Context) {
	var request BabbleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			bc.logger.Error("Invalid request payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request payload",
				"details": err.Error(),
			})
			return
		}
	}

	bc.logger.Info("Babbling", zap.String("start", request.Start))

	text, err := bc.babbleService.Babble(request.Start)
	if err != nil {
		bc.logger.Error("Failed to babble", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to babble",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

func (bc *BabbleController) Ask(c *gin.Context) {
	var request AskRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	bc.logger.Info("Answering question", zap.String("question", request.Question))

	text, err := bc.babbleService.Ask(request.Question)
	if err != nil {
		bc.logger.Error("Failed to answer question", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to answer question",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

type MessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// Message feeds an ambient message through the autonomous answer gate.
// Returns 204 when the bot decides to stay quiet.
func (bc *BabbleController) Message(c *gin.Context) {
	var request MessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	text, ok, err := bc.babbleService.AutoAnswer(request.Body)
	if err != nil {
		bc.logger.Error("Failed to process message", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process message",
			"details": err.Error(),
		})
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// Context renders the provenance of the last generation as HTML.
func (bc *BabbleController) Context(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(bc.babbleService.Context()))
}

func (bc *BabbleController) Reload(c *gin.Context) {
	bc.logger.Info("Reloading babble sources")

	messages, err := bc.babbleService.Reload(c.Request.Context())
	if err != nil {
		bc.logger.Error("Failed to reload sources", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload sources",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (bc *BabbleController) ListSources(c *gin.Context) {
	sources, err := bc.babbleService.Sources()
	if err != nil {
		bc.logger.Error("Failed to list sources", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list sources",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

type AddSourceRequest struct {
	URL string `json:"url" binding:"required"`
}

func (bc *BabbleController) AddSource(c *gin.Context) {
	var request AddSourceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	bc.logger.Info("Adding babble source", zap.String("url", request.URL))

	messages, err := bc.babbleService.AddSource(c.Request.Context(), request.URL)
	if err != nil {
		bc.logger.Error("Failed to add source",
			zap.String("url", request.URL),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add source",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (bc *BabbleController) RemoveSource(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid source index",
			"details": err.Error(),
		})
		return
	}

	bc.logger.Info("Removing babble source", zap.Int("index", index))

	messages, err := bc.babbleService.RemoveSource(c.Request.Context(), index)
	if err != nil {
		bc.logger.Error("Failed to remove source",
			zap.Int("index", index),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove source",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (bc *BabbleController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, bc.babbleService.Stats())
}
