package common

const (
	ComponentIngester    = "ingester"
	ComponentDecoder     = "decoder"
	ComponentBlockStore  = "block-store"
	ComponentSource      = "source"
	ComponentAPI         = "api"
	ComponentMaintenance = "maintenance"
)

var AllComponents = map[string]struct{}{
	ComponentIngester:    {},
	ComponentDecoder:     {},
	ComponentBlockStore:  {},
	ComponentSource:      {},
	ComponentAPI:         {},
	ComponentMaintenance: {},
}
