package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every API handler mounted under the API prefix.
type Handlers struct {
	Subjects    *SubjectHandler
	Teachers    *TeacherHandler
	Plans       *PlanHandler
	Cycles      *CycleHandler
	Shifts      *ShiftHandler
	Divisions   *DivisionHandler
	Schedules   *ScheduleHandler
	Timetables  *TimetableHandler
	Maintenance *MaintenanceHandler
}

// RegisterRoutes mounts the timetable API on api.
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	subjects := api.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.POST("", h.Subjects.Create)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.PUT("/:id", h.Subjects.Update)
	subjects.DELETE("/:id", h.Subjects.Delete)

	teachers := api.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.POST("", h.Teachers.Create)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Delete)
	teachers.GET("/:id/shifts", h.Teachers.ListShifts)
	teachers.POST("/:id/shifts", h.Teachers.AssignShift)
	teachers.DELETE("/:id/shifts/:shiftId", h.Teachers.RemoveShift)
	teachers.GET("/:id/subjects", h.Teachers.ListSubjects)
	teachers.POST("/:id/subjects", h.Teachers.RegisterSubject)
	teachers.PUT("/:id/subjects/:subjectId", h.Teachers.UpdateSubject)
	teachers.DELETE("/:id/subjects/:subjectId", h.Teachers.RemoveSubject)
	teachers.GET("/:id/schedules", h.Schedules.ListForTeacher)
	teachers.POST("/:id/schedules", h.Schedules.CreateForTeacher)
	teachers.GET("/:id/timetable", h.Timetables.Teacher)

	plans := api.Group("/plans")
	plans.GET("", h.Plans.List)
	plans.POST("", h.Plans.Create)
	plans.GET("/:id", h.Plans.Get)
	plans.PUT("/:id", h.Plans.Update)
	plans.DELETE("/:id", h.Plans.Delete)
	plans.GET("/:id/subjects", h.Plans.ListSubjects)
	plans.POST("/:id/subjects", h.Plans.LinkSubject)
	plans.DELETE("/:id/subjects/:subjectId", h.Plans.UnlinkSubject)
	plans.GET("/:id/cycles", h.Plans.ListCycles)
	plans.POST("/:id/cycles", h.Plans.LinkCycle)
	plans.DELETE("/:id/cycles/:cycleId", h.Plans.UnlinkCycle)

	cycles := api.Group("/cycles")
	cycles.GET("", h.Cycles.List)
	cycles.POST("", h.Cycles.Create)
	cycles.GET("/:id", h.Cycles.Get)
	cycles.PUT("/:id", h.Cycles.Update)
	cycles.DELETE("/:id", h.Cycles.Delete)
	cycles.GET("/:id/subjects", h.Cycles.ListSubjects)
	cycles.POST("/:id/subjects", h.Cycles.LinkSubject)
	cycles.DELETE("/:id/subjects/:subjectId", h.Cycles.UnlinkSubject)

	shifts := api.Group("/shifts")
	shifts.GET("", h.Shifts.List)
	shifts.POST("", h.Shifts.Create)
	shifts.GET("/:id", h.Shifts.Get)
	shifts.PUT("/:id", h.Shifts.Update)
	shifts.DELETE("/:id", h.Shifts.Delete)
	shifts.GET("/:id/plans", h.Shifts.ListPlans)
	shifts.POST("/:id/plans", h.Shifts.LinkPlan)
	shifts.DELETE("/:id/plans/:planId", h.Shifts.UnlinkPlan)

	divisions := api.Group("/divisions")
	divisions.GET("", h.Divisions.List)
	divisions.POST("", h.Divisions.Create)
	divisions.GET("/:id", h.Divisions.Get)
	divisions.PUT("/:id", h.Divisions.Update)
	divisions.DELETE("/:id", h.Divisions.Delete)
	divisions.GET("/:id/schedules", h.Schedules.ListForDivision)
	divisions.POST("/:id/schedules", h.Schedules.CreateForDivision)
	divisions.GET("/:id/timetable", h.Timetables.Division)

	schedules := api.Group("/schedules")
	schedules.GET("/:id", h.Schedules.Get)
	schedules.DELETE("/:id", h.Schedules.Delete)

	api.GET("/maintenance/counters", h.Maintenance.Counters)
}
