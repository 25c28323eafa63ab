package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/everly/elearning/api/echo"
	"github.com/everly/elearning/core"
	"github.com/everly/elearning/core/course"
	"github.com/everly/elearning/core/factor"
	"github.com/everly/elearning/core/user"
	emailsvc "github.com/everly/elearning/services/email"
	logsvc "github.com/everly/elearning/services/logger"
	"github.com/everly/elearning/storage/database"
	"github.com/everly/elearning/storage/database/mongodb"
	"github.com/everly/elearning/storage/files"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Client().Disconnect(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	if err = database.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal(fmt.Sprintf("ensuring indexes: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(mongodb.NewUserRepository(db), mailSvc, conf)
	crsSvc := course.NewService(mongodb.NewCourseRepository(db), mailSvc, conf)
	fctSvc := factor.NewService(mongodb.NewFactorRepository(db))

	fileStore, err := files.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads dir: %v", err), err)
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : env %q", conf.Env))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		UserSvc:   usrSvc,
		CourseSvc: crsSvc,
		FactorSvc: fctSvc,
		Files:     fileStore,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
