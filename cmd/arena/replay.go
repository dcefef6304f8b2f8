// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/arena-sim/arena/archive"
	"github.com/arena-sim/arena/sim"
)

var ReplayCmd = cli.Command{
	Action:    doReplay,
	Name:      "replay",
	Usage:     "Print the execution log of an archived simulation run",
	ArgsUsage: "<archive>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "failed-only",
			Usage: "print only transactions that did not succeed",
		},
	},
}

func doReplay(context *cli.Context) error {
	if context.Args().Len() < 1 {
		return fmt.Errorf("missing archive argument")
	}
	records, err := archive.ReadAll(context.Args().Get(0))
	if err != nil {
		return err
	}

	failedOnly := context.Bool("failed-only")
	for _, record := range records {
		if failedOnly && record.Result.Status == sim.StatusSuccess {
			continue
		}
		recipient := "<create>"
		if record.Transaction.Recipient != nil {
			recipient = record.Transaction.Recipient.String()
		}
		fmt.Printf("[%6d] step %6d agent %-12s %v -> %v value %v gas %d status %v\n",
			record.Sequence, record.Step, record.Agent,
			record.Transaction.Sender, recipient,
			record.Transaction.Value, record.Result.GasUsed, record.Result.Status)
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}
