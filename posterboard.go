package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ryan-gr/50001-1D-Backend/api"
	"github.com/ryan-gr/50001-1D-Backend/core"
	"github.com/ryan-gr/50001-1D-Backend/sqldb"
	"github.com/ryan-gr/50001-1D-Backend/sqldb/sqlite3"
	"github.com/ryan-gr/50001-1D-Backend/util"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	flag.StringVar(&dbArg, "db", "sqlite3:posterboard.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl")
	var configPath = flag.String("config", "", "load listen and db defaults from this ini `file`")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", "sqlite3:posterboard.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl") // copied from above
	var initAdmin = initFlags.Bool("admin", false, "create the user with administrator privilege")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// config file fills in whatever the command line left at its default

	if *configPath != "" {
		cfg, err := util.Ini(*configPath)
		if err != nil {
			log.Printf("could not load config file: %v", err)
			return
		}
		var set = map[string]bool{}
		flag.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})
		if v, ok := cfg["listen"]; ok && !set["listen"] {
			*listenAddr = v
		}
		if v, ok := cfg["db"]; ok && !set["db"] {
			dbArg = v
		}
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// assemble stuff

	db := &core.DB{}
	if err := db.Init(sqlite3.NewSessionStore(sqlDB), ""); err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	db.UserDB = sqldb.NewUserDB(sqlDB)
	db.PosterDB = sqldb.NewPosterDB(sqlDB)

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		if *username != "" {
			insertUser(db, *username, *initAdmin)
		}
		return
	}

	listen(db, *listenAddr)
}

func insertUser(db *core.DB, name string, admin bool) {

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return
	}

	privilege := core.Standard
	if admin {
		privilege = core.Administrator
	}

	if _, err := db.InsertUser(name, string(pass1), privilege); err != nil {
		log.Printf("error creating user %s: %v", name, err)
	}
}

func listen(db *core.DB, addr string) {

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(api.NewRouter(db)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
