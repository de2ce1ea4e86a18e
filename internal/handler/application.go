package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pawangupta079/skill-hire/pkg/model"
	"github.com/pawangupta079/skill-hire/pkg/response"
)

func (h *Handler) SubmitApplication(c *gin.Context) {
	var req model.SubmitApplicationReq
	if !h.bindJSON(c, "submit application", &req) {
		return
	}
	app, err := h.Applications.Submit(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.fail(c, "submit application", err)
		return
	}
	response.Created(c, app)
}

func (h *Handler) MyApplications(c *gin.Context) {
	var q model.ListApplicationsQuery
	if !h.bindQuery(c, "my applications", &q) {
		return
	}
	page, err := h.Applications.ListForCandidate(c.Request.Context(), h.actor(c), q)
	if err != nil {
		h.fail(c, "my applications", err)
		return
	}
	response.OKWithMeta(c, page.Items, response.Paging(page.Page, page.Limit, page.Total))
}

func (h *Handler) JobApplications(c *gin.Context) {
	var q model.ListApplicationsQuery
	if !h.bindQuery(c, "job applications", &q) {
		return
	}
	page, err := h.Applications.ListForJob(c.Request.Context(), h.actor(c), c.Param("jobId"), q)
	if err != nil {
		h.fail(c, "job applications", err)
		return
	}
	response.OKWithMeta(c, page.Items, response.Paging(page.Page, page.Limit, page.Total))
}

func (h *Handler) GetApplication(c *gin.Context) {
	app, err := h.Applications.Get(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get application", err)
		return
	}
	response.OK(c, app)
}

func (h *Handler) UpdateApplicationStatus(c *gin.Context) {
	var req model.UpdateStatusReq
	if !h.bindJSON(c, "update application status", &req) {
		return
	}
	app, err := h.Applications.UpdateStatus(c.Request.Context(), h.actor(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, "update application status", err)
		return
	}
	response.OK(c, app)
}

func (h *Handler) WithdrawApplication(c *gin.Context) {
	app, err := h.Applications.Withdraw(c.Request.Context(), h.actor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "withdraw application", err)
		return
	}
	response.OK(c, app)
}

func (h *Handler) AddApplicationNote(c *gin.Context) {
	var req model.AddNoteReq
	if !h.bindJSON(c, "add note", &req) {
		return
	}
	app, err := h.Applications.AddNote(c.Request.Context(), h.actor(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, "add note", err)
		return
	}
	response.Created(c, app)
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	var req model.ScheduleInterviewReq
	if !h.bindJSON(c, "schedule interview", &req) {
		return
	}
	app, err := h.Applications.ScheduleInterview(c.Request.Context(), h.actor(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, "schedule interview", err)
		return
	}
	response.Created(c, app)
}

func (h *Handler) AddCommunication(c *gin.Context) {
	var req model.AddCommunicationReq
	if !h.bindJSON(c, "add communication", &req) {
		return
	}
	app, err := h.Applications.AddCommunication(c.Request.Context(), h.actor(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, "add communication", err)
		return
	}
	response.Created(c, app)
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.Applications.DashboardStats(c.Request.Context(), h.actor(c))
	if err != nil {
		h.fail(c, "dashboard stats", err)
		return
	}
	response.OK(c, stats)
}
