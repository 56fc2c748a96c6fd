package server

import (
	"campaign-review-engine/internal/handler"
	"campaign-review-engine/internal/middleware"
	"campaign-review-engine/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	environment       string
	jwtSecret         string
	itemHandler       *handler.ItemHandler
	assignmentHandler *handler.AssignmentHandler
	uploadHandler     *handler.UploadHandler
	approvalHandler   *handler.ApprovalHandler
	trashHandler      *handler.TrashHandler
}

func NewServer(
	environment string,
	jwtSecret string,
	itemService service.ItemService,
	splitService service.SplitService,
	assignmentService service.AssignmentService,
	reconcileService service.ReconcileService,
	approvalService service.ApprovalService,
	trashService service.TrashService,
) *Server {
	e := echo.New()

	e.Use(echomw.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:              e,
		environment:       environment,
		jwtSecret:         jwtSecret,
		itemHandler:       handler.NewItemHandler(itemService, splitService, reconcileService),
		assignmentHandler: handler.NewAssignmentHandler(assignmentService),
		uploadHandler:     handler.NewUploadHandler(reconcileService),
		approvalHandler:   handler.NewApprovalHandler(approvalService),
		trashHandler:      handler.NewTrashHandler(trashService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Anonymous proof-of-purchase uploads: the token is the credential.
	api.POST("/uploads/:token", s.uploadHandler.Upload)

	authed := api.Group("", middleware.AuthMiddleware(s.environment, s.jwtSecret))

	// -------- sales --------
	authed.POST("/campaigns", s.itemHandler.CreateCampaign)
	authed.POST("/items", s.itemHandler.CreateItem)
	authed.GET("/items/:id/slots", s.itemHandler.ListSlots)
	authed.GET("/items/:id/assignments", s.assignmentHandler.ListByItem)

	// -------- operators / sales --------
	authed.PUT("/slots/:id", s.itemHandler.UpdateSlot)
	authed.POST("/slots/:id/split", s.itemHandler.SplitSlot)

	// -------- admin --------
	authed.POST("/assignments", s.assignmentHandler.Assign)
	authed.PUT("/assignments", s.assignmentHandler.Reassign)
	authed.DELETE("/assignments", s.assignmentHandler.Unassign)

	authed.GET("/images/pending", s.approvalHandler.ListPending)
	authed.POST("/images/:id/approve", s.approvalHandler.Approve)
	authed.POST("/images/:id/reject", s.approvalHandler.Reject)

	authed.POST("/trash/:type/:id", s.trashHandler.SoftDelete)
	authed.POST("/trash/:type/:id/restore", s.trashHandler.Restore)
	authed.DELETE("/trash/:type/:id", s.trashHandler.PermanentDelete)
	authed.DELETE("/trash", s.trashHandler.EmptyTrash)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
