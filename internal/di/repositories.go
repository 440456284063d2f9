package di

import (
	"github.com/pricefolio/pricefolio/internal/clientdata"
	"github.com/pricefolio/pricefolio/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the lot repository for the active backend and the rate store
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.PostgresDB != nil {
		container.LotRepo = portfolio.NewPostgresLotRepository(container.PostgresDB.Pool(), log)
	} else {
		container.LotRepo = portfolio.NewLotRepository(container.PortfolioDB.Conn(), log)
	}

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())
	container.RateStore = clientdata.NewRateStore(container.ClientDataRepo)

	log.Debug().Msg("Repositories initialized")
	return nil
}
