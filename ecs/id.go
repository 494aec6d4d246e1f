package ecs

import "math"

// SlotId identifies a record inside one SlotContainer. Ids are handed out in
// increasing order starting at zero and are never reused by that container.
type SlotId uint64

// InvalidSlotId is never returned by an insertion.
const InvalidSlotId SlotId = math.MaxUint64

// OwnerId identifies an Owner inside an Owners directory.
type OwnerId = SlotId
