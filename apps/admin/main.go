package main

import (
	"context"
	"log"
	"os"

	"github.com/everly/elearning/core"
	"github.com/everly/elearning/storage/database"
	"github.com/everly/elearning/storage/database/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(context.Background(), conf)
	errAndDie(err)
	defer db.Client().Disconnect(context.Background()) //nolint:errcheck
	errAndDie(database.EnsureIndexes(context.Background(), db))

	// start CLI
	cli := commandLine{
		usrRepo: mongodb.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
