package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type ForestParameters struct {
	Title     string `yaml:"Title"`
	Dimension int    `yaml:"Dimension"` // 2 or 3
	MinLevel  int    `yaml:"MinLevel"`
	Periodic  bool   `yaml:"Periodic"`
	Topology  string `yaml:"Topology"` // "unit" or "brick"
	BrickX    int    `yaml:"BrickX"`
	BrickY    int    `yaml:"BrickY"`
	BrickZ    int    `yaml:"BrickZ"`
	Ranks     int    `yaml:"Ranks"` // simulated rank count
}

func (fp *ForestParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, fp); err != nil {
		return err
	}
	return fp.Validate()
}

func (fp *ForestParameters) Validate() error {
	if fp.Dimension != 2 && fp.Dimension != 3 {
		return fmt.Errorf("Dimension must be 2 or 3, have %d", fp.Dimension)
	}
	if fp.MinLevel < 0 {
		return fmt.Errorf("MinLevel must be non-negative, have %d", fp.MinLevel)
	}
	if fp.Ranks < 1 {
		return fmt.Errorf("Ranks must be positive, have %d", fp.Ranks)
	}
	switch fp.Topology {
	case "", "unit":
	case "brick":
		if fp.BrickX < 1 || fp.BrickY < 1 || (fp.Dimension == 3 && fp.BrickZ < 1) {
			return fmt.Errorf("brick sizes must be positive, have %d x %d x %d",
				fp.BrickX, fp.BrickY, fp.BrickZ)
		}
	default:
		return fmt.Errorf("unknown Topology %q", fp.Topology)
	}
	return nil
}

func (fp *ForestParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", fp.Title)
	fmt.Printf("[%d]\t\t\t= Dimension\n", fp.Dimension)
	fmt.Printf("[%d]\t\t\t= MinLevel\n", fp.MinLevel)
	fmt.Printf("[%v]\t\t\t= Periodic\n", fp.Periodic)
	fmt.Printf("[%s]\t\t\t= Topology\n", fp.Topology)
	if fp.Topology == "brick" {
		fmt.Printf("[%d x %d x %d]\t\t= Brick\n", fp.BrickX, fp.BrickY, fp.BrickZ)
	}
	fmt.Printf("[%d]\t\t\t= Ranks\n", fp.Ranks)
}
