package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// 2. Load with command line flags:
//
//	flags := map[string]interface{}{
//	    "workspace": "acme",
//	    "output":    "./exports",
//	    "headless":  false,
//	    "log-level": "debug",
//	}
//	cfg, err := config.Load("", flags)
//
// 3. Tune a scroll pass in .emojiharvest.yaml:
//
//	discord:
//	  section:
//	    max_attempts: 800
//	    stability_threshold: 12
//	    step_pixels: 30
//	    settle_delay: 250ms
//
// 4. Environment variables:
//
//	export EMOJIHARVEST_SLACK_WORKSPACE="acme"
//	export EMOJIHARVEST_USER_DATA_DIR="$HOME/.config/chromium-harvest"
//	export EMOJIHARVEST_REMOTE_URL="ws://127.0.0.1:9222/devtools/browser/..."
//	export EMOJIHARVEST_OUTPUT_DIR="./exports"
//	export EMOJIHARVEST_LOG_LEVEL="debug"
