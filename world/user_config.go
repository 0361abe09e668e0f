package world

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/df-mc/voxelworld/block"
	"github.com/df-mc/voxelworld/block/cube"
	"github.com/df-mc/voxelworld/world/generator"
	"github.com/df-mc/voxelworld/world/mesh"
	"github.com/pelletier/go-toml"
)

// UserConfig is the user configuration of a World, as stored in a TOML file.
// It is converted to a Config using UserConfig.Config.
type UserConfig struct {
	World struct {
		// Seed controls the procedural generation of the world.
		Seed int64
		// Generator is the generator used for new chunks: "terrain" for hilly
		// terrain or "flat" for the layers in FlatLayers.
		Generator string
		// FlatLayers holds the block names of the layers of the flat
		// generator, from the top down.
		FlatLayers []string
		// MinChunkY and MaxChunkY are the half-open range of chunk y
		// coordinates that may hold chunks.
		MinChunkY, MaxChunkY int32
	}
	Loading struct {
		// ViewDistance is the distance in chunks within which chunks are
		// loaded around the viewer.
		ViewDistance int
		// UnloadDistance is the distance in chunks beyond which chunks are
		// evicted.
		UnloadDistance int
	}
	Workers struct {
		// Generator is the amount of chunk generation workers. Set to 0 to
		// pick a number based on the CPU count.
		Generator int
		// GeneratorQueueSize is how many chunks can wait for a generation
		// worker. Set to 0 to pick a size automatically.
		GeneratorQueueSize int
		// GenerationBatch is the maximum amount of chunks installed at once.
		GenerationBatch int
		// Mesh is the maximum amount of chunks meshed concurrently. Set to 0
		// to use the CPU count.
		Mesh int
	}
	Mesh struct {
		// Greedy merges coplanar faces of render meshes into larger quads.
		Greedy bool
	}
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Seed = 0
	c.World.Generator = "terrain"
	c.World.FlatLayers = []string{"grass", "dirt", "dirt", "bedrock"}
	c.World.MinChunkY, c.World.MaxChunkY = 0, 5
	c.Loading.ViewDistance = 8
	c.Loading.UnloadDistance = 10
	c.Workers.GenerationBatch = 8
	c.Mesh.Greedy = false
	return c
}

// Config converts a UserConfig to a Config, so that it may be used for creating
// a World. An error is returned if the generator settings are invalid.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:                log,
		Seed:               uint64(uc.World.Seed),
		BuildLimits:        cube.ChunkRange{uc.World.MinChunkY, uc.World.MaxChunkY},
		ViewDistance:       uc.Loading.ViewDistance,
		UnloadDistance:     uc.Loading.UnloadDistance,
		GeneratorWorkers:   uc.Workers.Generator,
		GeneratorQueueSize: uc.Workers.GeneratorQueueSize,
		GenerationBatch:    uc.Workers.GenerationBatch,
		MeshWorkers:        uc.Workers.Mesh,
		Mesh:               mesh.Options{Greedy: uc.Mesh.Greedy},
	}
	if uc.World.MaxChunkY <= uc.World.MinChunkY {
		return conf, fmt.Errorf("invalid build limits [%v, %v)", uc.World.MinChunkY, uc.World.MaxChunkY)
	}
	switch name := strings.ToLower(strings.TrimSpace(uc.World.Generator)); name {
	case "", "terrain":
		conf.Generator = generator.NewTerrain(conf.Seed, generator.DefaultOres(), generator.DeadBushes{Amount: 1})
	case "flat":
		layers := make([]block.Type, 0, len(uc.World.FlatLayers))
		for _, l := range uc.World.FlatLayers {
			b, ok := block.Parse(l)
			if !ok {
				return conf, fmt.Errorf("unknown flat layer block %q", l)
			}
			layers = append(layers, b)
		}
		conf.Generator = generator.NewFlat(layers...)
	default:
		return conf, fmt.Errorf("unknown generator %q", name)
	}
	return conf, nil
}

// LoadUserConfig reads the UserConfig stored at path. Fields missing from the
// file keep their default value. If no file exists at path, the default
// configuration is written to it and returned.
func LoadUserConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := writeUserConfig(path, c); err != nil {
			return c, err
		}
		return c, nil
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func writeUserConfig(path string, c UserConfig) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
