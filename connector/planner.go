/*
 * Copyright 2025 Gridstore
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package connector

import (
	"github.com/gridstore-io/gridlink/types"
)

// PlanPartitions splits a table of totalRows into at most targetCount
// disjoint, contiguous row windows covering exactly [0, totalRows). Each
// window holds totalRows/targetCount rows, the last one absorbs the
// remainder. Windows that would be empty are dropped, so a table smaller
// than targetCount yields a single window and an empty table yields none.
func PlanPartitions(totalRows int64, targetCount int) []types.Partition {
	if totalRows <= 0 {
		return nil
	}
	if targetCount < 1 {
		targetCount = 1
	}

	base := totalRows / int64(targetCount)
	partitions := make([]types.Partition, 0, targetCount)
	offset := int64(0)
	for i := 0; i < targetCount; i++ {
		count := base
		if i == targetCount-1 {
			count = totalRows - offset
		}
		if count == 0 {
			continue
		}
		partitions = append(partitions, types.Partition{
			Index:  len(partitions),
			Offset: offset,
			Count:  count,
		})
		offset += count
	}
	return partitions
}
