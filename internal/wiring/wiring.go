// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/modrules/internal/adapters/cas"
	_ "go.trai.ch/modrules/internal/adapters/config"
	_ "go.trai.ch/modrules/internal/adapters/fs"
	_ "go.trai.ch/modrules/internal/adapters/logger"
	_ "go.trai.ch/modrules/internal/adapters/render"
	_ "go.trai.ch/modrules/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/modrules/internal/app"
	_ "go.trai.ch/modrules/internal/engine/pipeline"
)
