package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Directory --dir ../domain/team --output domain/team --outpkg teammock --filename directory_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name GameLogSource --dir ../usecase --output usecase --outpkg usecasemock --filename game_log_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RemoteGameLogCache --dir ../usecase --output usecase --outpkg usecasemock --filename remote_game_log_cache_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SelectionStore --dir ../domain/team --output domain/team --outpkg teammock --filename selection_store_mock.go
