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
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/plasmakit/gotransp/InputParameters"
	"github.com/plasmakit/gotransp/sim"
)

type RunOptions struct {
	CaseFile string
	Profile  bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a transport simulation from a YAML case file",
	Long:  `Run a transport simulation from a YAML case file`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ro  = &RunOptions{}
		)
		if ro.CaseFile, err = cmd.Flags().GetString("caseFile"); err != nil {
			panic(err)
		}
		ro.Profile, _ = cmd.Flags().GetBool("profile")
		sp := processSimInput(ro)
		RunSim(ro, sp)
	},
}

func processSimInput(ro *RunOptions) (sp *InputParameters.SimParameters) {
	var (
		err error
	)
	sp = InputParameters.Defaults()
	if len(ro.CaseFile) == 0 {
		fmt.Printf("no case file given (-I, --caseFile), running built-in baseline\n")
		exampleFile := `
########################################
Title: "ITER baseline"
NCells: 25
Numerics:
  TFinal: 5
  DtInitial: 0.01
Transport:
  Model: constant
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return
	}
	var data []byte
	if data, err = ioutil.ReadFile(ro.CaseFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if err = sp.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("caseFile", "I", "", "YAML file with the simulation case parameters")
	RunCmd.Flags().BoolP("profile", "p", false, "write a CPU profile of the run")
}

func RunSim(ro *RunOptions, sp *InputParameters.SimParameters) {
	if ro.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	sp.Print()
	s, err := sim.New(sp)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	history, err := s.Run(context.Background())
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	last := history[len(history)-1]
	fmt.Printf("completed %d steps to t = %8.5f\n", len(history)-1, last.Time)
	fmt.Printf("Ti0 = %6.3f [keV], Te0 = %6.3f [keV], ne0 = %6.3f [10^20/m^3]\n",
		last.State.TempIon.Value[0], last.State.TempEl.Value[0], last.State.Ne.Value[0])
	fmt.Printf("Ip = %8.3f [MA], q0 = %6.3f, q95 ~ %6.3f\n",
		last.State.Currents.Ip/1e6, last.State.QFace[0], last.State.QFace[len(last.State.QFace)-1])
}
