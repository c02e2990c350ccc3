package router

import (
	"github.com/alexisbanda/invercorp-backend/config"
	"github.com/alexisbanda/invercorp-backend/database"
	"github.com/alexisbanda/invercorp-backend/handlers"
	"github.com/go-redis/cache/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger.
var l = logrus.New()

func SetupRoutes(app *fiber.App, rcache *cache.Cache, sms handlers.SMSSender) {

	loanDB := database.NewLoanStore(config.GetEnvDefault("LOAN_COLLECTION", "loans"))
	savingsDB := database.NewSavingsStore(
		config.GetEnvDefault("PLAN_COLLECTION", "programmed_savings"),
		config.GetEnvDefault("DEPOSIT_COLLECTION", "deposits"),
		config.GetEnvDefault("WITHDRAWAL_COLLECTION", "withdrawals"),
		config.GetEnvDefault("COUNTER_COLLECTION", "plan_counters"),
	)
	userDB := database.NewUserStore(config.GetEnvDefault("USER_COLLECTION", "users"))

	h := handlers.NewHandler(loanDB, savingsDB, userDB, l, sms)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "INVERCORP portal backend",
		})
	})

	app.Get("/health", handlers.HandleHealthCheck)

	api := app.Group("/api")
	coreEndpoints := api.Group("/core", ResolveIdentity(userDB, rcache))

	users := coreEndpoints.Group("/users")
	users.Post("/", handlers.CreateUser(h))
	users.Get("/:email", handlers.GetUser(h))

	loans := coreEndpoints.Group("/loans")
	loans.Post("/", handlers.CreateLoan(h))
	loans.Get("/", handlers.ListLoans(h))
	loans.Get("/:id", handlers.GetLoan(h))
	loans.Post("/:id/installments", handlers.InsertInstallment(h))
	loans.Put("/:id/installments/:number", handlers.UpdateInstallment(h))
	loans.Delete("/:id/installments/:number", handlers.RemoveInstallment(h))
	loans.Post("/:id/installments/:number/report", handlers.ReportInstallmentPayment(h))
	loans.Post("/:id/installments/:number/approve", handlers.ApproveInstallment(h))
	loans.Post("/:id/installments/:number/reject", handlers.RejectInstallment(h))

	clients := coreEndpoints.Group("/clients")
	clients.Post("/:client_id/savings", handlers.CreateSavingsPlan(h))

	savings := coreEndpoints.Group("/savings")
	savings.Get("/", handlers.ListSavingsPlans(h))
	savings.Get("/:plan_id", handlers.GetSavingsPlan(h))
	savings.Put("/:plan_id/status", handlers.UpdateSavingsPlanStatus(h))
	savings.Get("/:plan_id/deposits", handlers.ListDeposits(h))
	savings.Post("/:plan_id/deposits", handlers.AddDeposit(h))
	savings.Post("/:plan_id/deposits/manual", handlers.AddManualDeposit(h))
	savings.Post("/:plan_id/deposits/:deposit_id/confirm", handlers.ConfirmDeposit(h))
	savings.Post("/:plan_id/deposits/:deposit_id/reject", handlers.RejectDeposit(h))
	savings.Delete("/:plan_id/deposits/:deposit_id", handlers.DeleteDeposit(h))
	savings.Get("/:plan_id/withdrawals", handlers.ListWithdrawals(h))
	savings.Post("/:plan_id/withdrawals", handlers.RequestWithdrawal(h))
	savings.Post("/:plan_id/withdrawals/manual", handlers.RegisterManualWithdrawal(h))
	savings.Post("/:plan_id/withdrawals/:withdrawal_id/process", handlers.ProcessWithdrawal(h))
	savings.Post("/:plan_id/withdrawals/:withdrawal_id/reject", handlers.RejectWithdrawal(h))

	reports := coreEndpoints.Group("/reports")
	reports.Get("/dashboard", handlers.GetDashboard(h, rcache))
	reports.Get("/aging", handlers.GetAgingReport(h))
	reports.Get("/advisors", handlers.GetAdvisorReport(h))
	reports.Delete("/cache", handlers.ClearDashboardCache(h, rcache))

	simulator := coreEndpoints.Group("/simulator")
	simulator.Post("/credit", handlers.SimulateCredit(h))
	simulator.Post("/schedule", handlers.PreviewSchedule(h))
}
