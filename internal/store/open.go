package store

import (
	"database/sql"
	"log"

	"go.mongodb.org/mongo-driver/mongo"
)

// Backend names accepted by Open and by the STORE_BACKEND env var.
const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
	BackendMongo  = "mongo"
)

// Open selects the active backend for the process.  The caller attempts
// to connect to the durable backend and passes the resulting handle;
// a nil handle means the connection failed and the in-memory adapter is
// used instead.  The fallback is a logged degradation, not an error:
// every subsequent Store call transparently targets the in-memory
// adapter with an unchanged contract.  Exactly one backend is active
// per process; there is no runtime switching.
func Open(backend string, db *sql.DB, mdb *mongo.Database) Store {
	switch backend {
	case BackendMySQL:
		if db != nil {
			return NewMySQLStore(db)
		}
		log.Printf("store: mysql unreachable, falling back to in-memory store")
	case BackendMongo:
		if mdb != nil {
			return NewMongoStore(mdb)
		}
		log.Printf("store: mongodb unreachable, falling back to in-memory store")
	case BackendMemory:
	default:
		log.Printf("store: unknown backend %q, using in-memory store", backend)
	}
	return NewMemoryStore()
}
