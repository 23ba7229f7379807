package flatsql

import (
	"github.com/flatsql/flatsql/db"
	"github.com/flatsql/flatsql/ps"
)

type Instance struct {
	Store *ps.Store
}

func Open(store *ps.Store) *Instance {
	return &Instance{
		Store: store,
	}
}

func (instance *Instance) Engine() *db.Engine {
	return db.NewEngine(instance.Store)
}
