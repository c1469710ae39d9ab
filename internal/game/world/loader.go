package world

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/san_antonio.yaml
var defaultWorldYAML []byte

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	World yamlWorld `yaml:"world"`
}

// yamlWorld is the YAML representation of a world.
type yamlWorld struct {
	StartRoom string     `yaml:"start_room"`
	Rooms     []yamlRoom `yaml:"rooms"`
	NPCs      []yamlNPC  `yaml:"npcs"`
	Items     []yamlItem `yaml:"items"`
}

// yamlRoom is the YAML representation of a room.
type yamlRoom struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Exits       map[string]string `yaml:"exits"`
}

// yamlNPC is the YAML representation of an NPC.
type yamlNPC struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Room        string            `yaml:"room"`
	Responses   map[string]string `yaml:"responses"`
	Wander      []string          `yaml:"wander"`
}

// yamlItem is the YAML representation of an item.
type yamlItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Room        string `yaml:"room"`
}

// LoadFromFile reads and validates a world YAML file.
//
// Precondition: path must point to a valid YAML world file.
// Postcondition: Returns a validated World or a non-nil error.
func LoadFromFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a world from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the world schema.
// Postcondition: Returns a validated World or a non-nil error.
func LoadFromBytes(data []byte) (*World, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}

	w := convertYAMLWorld(file.World)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}

	return w, nil
}

// Default returns the embedded San Antonio world.
//
// Postcondition: Returns a validated World; panics only if the embedded
// content is itself invalid, which is covered by tests.
func Default() (*World, error) {
	return LoadFromBytes(defaultWorldYAML)
}

// convertYAMLWorld converts the parsed YAML structures into domain types.
func convertYAMLWorld(yw yamlWorld) *World {
	w := &World{
		StartRoom: yw.StartRoom,
		Rooms:     make(map[string]*Room, len(yw.Rooms)),
	}

	for _, yr := range yw.Rooms {
		room := &Room{
			ID:          yr.ID,
			Name:        yr.Name,
			Description: strings.TrimSpace(yr.Description),
			Exits:       make(map[Direction]string, len(yr.Exits)),
		}
		for dir, target := range yr.Exits {
			room.Exits[Direction(strings.ToLower(dir))] = target
		}
		w.Rooms[room.ID] = room
	}

	for _, yn := range yw.NPCs {
		responses := make(map[string]string, len(yn.Responses))
		for k, v := range yn.Responses {
			responses[strings.ToLower(k)] = v
		}
		w.NPCs = append(w.NPCs, &NPC{
			ID:          yn.ID,
			Name:        yn.Name,
			Description: yn.Description,
			RoomID:      yn.Room,
			Responses:   responses,
			Wander:      yn.Wander,
		})
	}

	for _, yi := range yw.Items {
		w.Items = append(w.Items, &Item{
			ID:          yi.ID,
			Name:        yi.Name,
			Description: yi.Description,
			RoomID:      yi.Room,
		})
	}

	return w
}
