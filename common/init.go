package common

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/common/logger"
)

var (
	Port         = flag.Int("port", 3000, "the listening port")
	BaseURL      = flag.String("base-url", "", "generation service base url")
	TUI          = flag.Bool("tui", false, "run the terminal chat instead of the web server")
	PrintVersion = flag.Bool("version", false, "print version and exit")
	PrintHelp    = flag.Bool("help", false, "print help and exit")
	LogDir       = flag.String("log-dir", "", "specify the log directory")
)

func printHelp() {
	fmt.Println("Noonsongi " + Version + " - PDF to video generation client.")
	fmt.Println("Usage: noonsongi [--port <port>] [--base-url <url>] [--tui] [--log-dir <log directory>] [--version] [--help]")
}

// Init parses the command line and applies it over the environment defaults.
// It lives outside package init so tests importing common keep their own flags.
func Init() {
	flag.Parse()

	if *PrintVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if *PrintHelp {
		printHelp()
		os.Exit(0)
	}

	if os.Getenv("SESSION_SECRET") != "" {
		if os.Getenv("SESSION_SECRET") == "random_string" {
			logger.SysError("SESSION_SECRET is set to an example value, please change it to a random string.")
		} else {
			config.SessionSecret = os.Getenv("SESSION_SECRET")
		}
	}

	if *BaseURL != "" {
		config.BaseURL = *BaseURL
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		log.Fatalf("invalid base url %q, must start with http:// or https://", config.BaseURL)
	}

	// flag > env > none; unlike the server logs, the terminal mode has no default dir
	logDir := *LogDir
	if logDir == "" {
		logDir = os.Getenv("LOG_DIR")
	}
	if logDir != "" {
		var err error
		logDir, err = filepath.Abs(logDir)
		if err != nil {
			log.Fatal(err)
		}
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			err = os.Mkdir(logDir, 0777)
			if err != nil {
				log.Fatal(err)
			}
		}
		logger.LogDir = logDir
	}
}
