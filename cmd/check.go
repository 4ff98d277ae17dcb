/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"sync"

	"github.com/notargets/goforest/InputParameters"
	"github.com/notargets/goforest/forest"
	"github.com/notargets/goforest/ghost"
	"github.com/notargets/goforest/mesh"
	"github.com/notargets/goforest/neighbor"

	"github.com/spf13/cobra"
)

type CheckModel struct {
	ParamFile string
	VTKFile   string
	Verify    bool
}

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Build an adaptive forest and verify its face neighbor tables",
	Long: `Builds an adaptive forest on a simulated rank partition, refines the
tree origin cell once, then resolves and prints the face neighbors of every
locally owned cell on every rank. Without a parameter file, runs the unit
square case twice, first with wall boundaries and then periodic.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		m := &CheckModel{}
		if m.ParamFile, err = cmd.Flags().GetString("paramFile"); err != nil {
			panic(err)
		}
		m.VTKFile, _ = cmd.Flags().GetString("vtkFile")
		m.Verify, _ = cmd.Flags().GetBool("verify")
		if len(m.ParamFile) == 0 {
			// Default pair of cases on the unit square
			ip := &InputParameters.ForestParameters{
				Title: "Unit Square", Dimension: 2, MinLevel: 1, Ranks: 2,
			}
			RunCheck(m, ip)
			ip.Title, ip.Periodic = "Periodic Unit Square", true
			RunCheck(m, ip)
			return
		}
		ip := processForestInput(m)
		RunCheck(m, ip)
	},
}

func processForestInput(m *CheckModel) (ip *InputParameters.ForestParameters) {
	var (
		err  error
		data []byte
	)
	if data, err = ioutil.ReadFile(m.ParamFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Refined Brick"
Dimension: 2
MinLevel: 1
Periodic: false
Topology: brick # Can be "unit"
BrickX: 2
BrickY: 2
Ranks: 3
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	ip = &InputParameters.ForestParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	return
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("paramFile", "I", "", "YAML file for forest parameters like:\n\t- Dimension\n\t- MinLevel\n\t- Ranks")
	CheckCmd.Flags().StringP("vtkFile", "o", "", "write the refined forest to a legacy VTK file")
	CheckCmd.Flags().BoolP("verify", "v", true, "verify symmetry of the assembled dual graph")
}

func RunCheck(m *CheckModel, ip *InputParameters.ForestParameters) {
	var (
		conn *forest.Connectivity
	)
	ip.Print()
	switch {
	case ip.Topology == "brick":
		conn = forest.NewBrick(ip.Dimension, ip.BrickX, ip.BrickY, ip.BrickZ,
			ip.Periodic, ip.Periodic, ip.Periodic)
	case ip.Periodic:
		conn = forest.NewPeriodic(ip.Dimension)
	case ip.Dimension == 3:
		conn = forest.NewUnitCube()
	default:
		conn = forest.NewUnitSquare()
	}
	w := forest.New(conn, ip.MinLevel)
	w.Refine(forest.RefineTreeOrigin)
	w.Balance()
	w.Partition(ip.Ranks)
	w.AnalyzePartition()

	// Each simulated rank builds its ghost layer, neighbor table and
	// verification records independently
	var (
		wg      sync.WaitGroup
		views   = make([]*neighbor.Resolver, ip.Ranks)
		reports = make([][]neighbor.Record, ip.Ranks)
	)
	for rank := 0; rank < ip.Ranks; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			gl, err := ghost.Build(w, rank)
			if err != nil {
				log.Fatalf("rank %d: ghost build failed: %s", rank, err.Error())
			}
			msh, err := mesh.Build(w, rank, gl)
			if err != nil {
				log.Fatalf("rank %d: mesh build failed: %s", rank, err.Error())
			}
			ck := neighbor.NewChecker(neighbor.NewResolver(w, rank, msh, gl))
			records, err := ck.Check()
			if err != nil {
				log.Fatalf("rank %d: %s", rank, err.Error())
			}
			views[rank] = ck.Resolver
			reports[rank] = records
		}(rank)
	}
	wg.Wait()

	// Print rank reports in rank order
	for rank := 0; rank < ip.Ranks; rank++ {
		neighbor.Write(os.Stdout, reports[rank])
	}
	if m.Verify {
		if err := neighbor.VerifySymmetry(views); err != nil {
			log.Fatalf("symmetry verification failed: %s", err.Error())
		}
		fmt.Printf("Dual graph is symmetric across %d ranks\n", ip.Ranks)
	}
	if len(m.VTKFile) != 0 {
		if err := w.WriteVTK(m.VTKFile); err != nil {
			log.Fatalf("VTK output failed: %s", err.Error())
		}
		fmt.Printf("Wrote %s\n", m.VTKFile)
	}
}
