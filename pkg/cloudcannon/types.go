package cloudcannon

import (
	"github.com/bianoble/cloudcannon-hugo/internal/collection"
	"github.com/bianoble/cloudcannon-hugo/internal/config"
	"github.com/bianoble/cloudcannon-hugo/internal/engine"
	"github.com/bianoble/cloudcannon-hugo/internal/output"
	"github.com/bianoble/cloudcannon-hugo/internal/paths"
)

// Type aliases re-export the engine types as the public API.

type Descriptor = engine.Descriptor
type GeneratorInfo = engine.GeneratorInfo
type Multilingual = engine.Multilingual
type ToolInfo = engine.ToolInfo
type Entry = collection.Entry
type Item = collection.Item
type Config = config.Config
type FlagValues = config.FlagValues
type FragmentInfo = config.FragmentInfo
type PathSet = paths.Set

// InfoPath is the descriptor location relative to the publish directory.
const InfoPath = output.InfoPath
