package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"millops-backend/internal/model"
	"millops-backend/internal/mw"
)

type createBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// CreateBranch handles POST /api/branches.
func (h *Handler) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.Branch{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "branch name already exists"})
		return
	}

	branch := model.Branch{Name: req.Name, Address: req.Address}
	if err := h.store.DB().Create(&branch).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, branch)
}

// ListBranches handles GET /api/branches.
func (h *Handler) ListBranches(c *gin.Context) {
	var branches []model.Branch
	if err := h.store.DB().Order("id ASC").Find(&branches).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve branches"})
		return
	}
	c.JSON(http.StatusOK, branches)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role" binding:"required"`
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.store.DB().Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
		return
	}

	user := model.User{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		BranchID: mw.BranchID(c),
	}
	if err := h.store.DB().Create(&user).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c *gin.Context) {
	var users []model.User
	if err := branchScoped(c, h.store.DB()).Order("username ASC").Find(&users).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type createMachineRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := model.Machine{
		Name:     req.Name,
		Type:     req.Type,
		BranchID: mw.BranchID(c),
	}
	if err := h.store.DB().Create(&machine).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	var machines []model.Machine
	if err := branchScoped(c, h.store.DB()).Order("name ASC").Find(&machines).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}
