package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mitra/backend/internal/interfaces/http/handler"
)

// AccountRoutes registers the account master-data and synchronization routes
type AccountRoutes struct {
	Accounts *handler.AccountHandler
	Sync     *handler.SyncHandler
	Machines *handler.MachineHandler
	Revenue  *handler.RevenueRuleHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *AccountRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", r.Accounts.Create)
		accounts.GET("", r.Accounts.List)
		accounts.GET("/:id", r.Accounts.GetByID)
		accounts.PUT("/:id", r.Accounts.Update)
		accounts.DELETE("/:id", r.Accounts.Delete)
		accounts.POST("/:id/activate", r.Accounts.Activate)
		accounts.POST("/:id/deactivate", r.Accounts.Deactivate)

		accounts.POST("/:id/addresses", r.Accounts.AddAddress)
		accounts.POST("/:id/pics", r.Accounts.AddPIC)
		accounts.DELETE("/:id/pics/:picId", r.Accounts.RemovePIC)
		accounts.POST("/:id/bank-accounts", r.Accounts.AddBankAccount)
		accounts.POST("/:id/package-tiers", r.Accounts.AddPackageTier)
		accounts.DELETE("/:id/package-tiers/:tierId", r.Accounts.RemovePackageTier)

		accounts.POST("/:id/sync", r.Sync.Sync)

		accounts.GET("/:id/machines", r.Machines.ListByAccount)
		accounts.GET("/:id/revenue-rules", r.Revenue.ListByAccount)
	}
}

// CatalogRoutes registers vendor and machine routes
type CatalogRoutes struct {
	Vendors  *handler.VendorHandler
	Machines *handler.MachineHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *CatalogRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	vendors := rg.Group("/vendors")
	{
		vendors.POST("", r.Vendors.Create)
		vendors.GET("", r.Vendors.List)
		vendors.GET("/:id", r.Vendors.GetByID)
		vendors.PUT("/:id", r.Vendors.Update)
		vendors.DELETE("/:id", r.Vendors.Delete)
	}

	machines := rg.Group("/machines")
	{
		machines.POST("", r.Machines.Create)
		machines.GET("", r.Machines.List)
		machines.GET("/:id", r.Machines.GetByID)
		machines.POST("/:id/assign", r.Machines.Assign)
		machines.PUT("/:id/status", r.Machines.UpdateStatus)
		machines.DELETE("/:id", r.Machines.Delete)
	}
}

// RevenueRoutes registers revenue rule routes
type RevenueRoutes struct {
	Rules *handler.RevenueRuleHandler
}

// RegisterRoutes implements RouteRegistrar
func (r *RevenueRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/revenue-rules")
	{
		rules.POST("", r.Rules.Create)
		rules.GET("", r.Rules.List)
		rules.GET("/:id", r.Rules.GetByID)
		rules.DELETE("/:id", r.Rules.Delete)
	}
}
