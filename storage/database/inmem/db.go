package inmemdb

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/core/user"
)

// DB is an in-memory store mirroring the document collections; it backs
// the repositories in tests.
type DB struct {
	mutex         sync.RWMutex
	users         map[primitive.ObjectID]*user.User
	courses       map[primitive.ObjectID]*course.Course
	registrations map[primitive.ObjectID]*course.Registration
	records       map[primitive.ObjectID]*factor.Record
}

func Open() *DB {
	return &DB{
		users:         make(map[primitive.ObjectID]*user.User),
		courses:       make(map[primitive.ObjectID]*course.Course),
		registrations: make(map[primitive.ObjectID]*course.Registration),
		records:       make(map[primitive.ObjectID]*factor.Record),
	}
}

func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[primitive.ObjectID]*user.User)
	db.courses = make(map[primitive.ObjectID]*course.Course)
	db.registrations = make(map[primitive.ObjectID]*course.Registration)
	db.records = make(map[primitive.ObjectID]*factor.Record)
}
