// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ingest

import (
	"github.com/0xsoniclabs/starknet-archive/common"
)

// StateUpdate is the state update of a single block as published by the
// feeder gateway.
type StateUpdate struct {
	BlockHash common.Felt `json:"block_hash"`
	NewRoot   common.Felt `json:"new_root"`
	OldRoot   common.Felt `json:"old_root"`
	StateDiff StateDiff   `json:"state_diff"`
}

type StateDiff struct {
	StorageDiffs         map[common.Felt][]StorageDiff `json:"storage_diffs"`
	DeployedContracts    []DeployedContract            `json:"deployed_contracts"`
	OldDeclaredContracts []common.Felt                 `json:"old_declared_contracts"`
	DeclaredClasses      []DeclaredClass               `json:"declared_classes"`
	Nonces               map[common.Felt]common.Felt   `json:"nonces"`
	ReplacedClasses      []DeployedContract            `json:"replaced_classes"`
}

// StorageDiff is a write to a single storage slot of a contract.
type StorageDiff struct {
	Key   common.Felt `json:"key"`
	Value common.Felt `json:"value"`
}

// DeployedContract assigns a class to a contract address. The same layout
// is used for class replacements.
type DeployedContract struct {
	Address   common.Felt `json:"address"`
	ClassHash common.Felt `json:"class_hash"`
}

type DeclaredClass struct {
	ClassHash         common.Felt `json:"class_hash"`
	CompiledClassHash common.Felt `json:"compiled_class_hash"`
}

// NumUpdates returns the number of field updates contained in the diff.
// Declared classes are not counted since they are not applied.
func (d *StateDiff) NumUpdates() int {
	res := len(d.DeployedContracts) + len(d.ReplacedClasses) + len(d.Nonces)
	for _, diffs := range d.StorageDiffs {
		res += len(diffs)
	}
	return res
}
