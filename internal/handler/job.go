package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

// ListJobs is the public job search.
func (h *Handler) ListJobs(c *gin.Context) {
	var q model.ListJobsQuery
	if !h.bindQuery(c, "list jobs", &q) {
		return
	}
	page, err := h.Jobs.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "list jobs", err)
		return
	}
	response.OKWithMeta(c, page.Items, response.Paging(page.Page, page.Limit, page.Total))
}

func (h *Handler) JobSuggestions(c *gin.Context) {
	s, err := h.Jobs.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, "job suggestions", err)
		return
	}
	response.OK(c, s)
}

func (h *Handler) MyJobs(c *gin.Context) {
	var q model.MyJobsQuery
	if !h.bindQuery(c, "my jobs", &q) {
		return
	}
	page, err := h.Jobs.MyJobs(c.Request.Context(), h.actor(c), q)
	if err != nil {
		h.fail(c, "my jobs", err)
		return
	}
	response.OKWithMeta(c, page.Items, response.Paging(page.Page, page.Limit, page.Total))
}

// GetJob works with or without a token; a candidate token adds has_applied.
func (h *Handler) GetJob(c *gin.Context) {
	detail, err := h.Jobs.Get(c.Request.Context(), h.optionalActor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get job", err)
		return
	}
	response.OK(c, detail)
}

func (h *Handler) CreateJob(c *gin.Context) {
	var in model.JobInput
	if !h.bindJSON(c, "create job", &in) {
		return
	}
	j, err := h.Jobs.Create(c.Request.Context(), h.actor(c), in)
	if err != nil {
		h.fail(c, "create job", err)
		return
	}
	response.Created(c, j)
}

func (h *Handler) UpdateJob(c *gin.Context) {
	var in model.JobInput
	if !h.bindJSON(c, "update job", &in) {
		return
	}
	j, err := h.Jobs.Update(c.Request.Context(), h.actor(c), c.Param("id"), in)
	if err != nil {
		h.fail(c, "update job", err)
		return
	}
	response.OK(c, j)
}

func (h *Handler) SetJobStatus(c *gin.Context) {
	var req model.UpdateJobStatusReq
	if !h.bindJSON(c, "set job status", &req) {
		return
	}
	j, err := h.Jobs.SetStatus(c.Request.Context(), h.actor(c), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, "set job status", err)
		return
	}
	response.OK(c, j)
}

func (h *Handler) DeleteJob(c *gin.Context) {
	if err := h.Jobs.Delete(c.Request.Context(), h.actor(c), c.Param("id")); err != nil {
		h.fail(c, "delete job", err)
		return
	}
	response.Message(c, "job deleted")
}
