package tasks

import (
	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
)

// DefaultCatalog builds the compiled-in task catalog. Registration
// happens once here; nothing is added at runtime.
func DefaultCatalog(cfg *config.Config) *catalog.Catalog {
	cat := catalog.New()
	cat.MustRegister(NewDailyBackup(cfg))
	cat.MustRegister(NewGenerateReport(cfg))
	cat.MustRegister(NewSendEmail(cfg))
	cat.MustRegister(NewCleanupLogs(cfg))
	cat.MustRegister(NewDockerPrune(cfg))
	cat.MustRegister(NewServiceCheck(cfg))
	return cat
}
