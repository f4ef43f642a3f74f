// Package config provides configuration parsing for the recalc CLI.
//
// The configuration is stored in recalc.json (or recalc.yaml / recalc.yml)
// in the working directory. A missing file yields the defaults.
//
// # Configuration File Structure
//
//	{
//	  "engine": {
//	    "maxParallelism": 8,
//	    "maxPropagationDepth": 10000
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "recalc"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "exporter": "stdout"
//	  },
//	  "server": {
//	    "addr": ":8090"
//	  }
//	}
//
// The same keys are accepted in YAML. RECALC_LOG_LEVEL overrides log.level.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := recalc.New(cfg.EngineOptions()...)
package config
