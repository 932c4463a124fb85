package protocol

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchSetValue    PatchOp = 0x08 // Set input value
	PatchAddClass    PatchOp = 0x10 // Add CSS class
	PatchRemoveClass PatchOp = 0x11 // Remove CSS class
	PatchDispatch    PatchOp = 0x20 // Dispatch client event
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchSetValue:
		return "SetValue"
	case PatchAddClass:
		return "AddClass"
	case PatchRemoveClass:
		return "RemoveClass"
	case PatchDispatch:
		return "Dispatch"
	default:
		return "Unknown"
	}
}

// hasKey reports whether the op carries a key field.
func (op PatchOp) hasKey() bool {
	switch op {
	case PatchSetAttr, PatchRemoveAttr, PatchAddClass, PatchRemoveClass, PatchDispatch:
		return true
	}
	return false
}

// hasValue reports whether the op carries a value field.
func (op PatchOp) hasValue() bool {
	switch op {
	case PatchSetText, PatchSetAttr, PatchSetValue:
		return true
	}
	return false
}

// Patch is a single DOM operation.
type Patch struct {
	Op     PatchOp
	Target string // Element id
	Key    string // Attribute, class, or event name
	Value  string // Text, attribute value, or input value
}

// PatchesFrame is a batch of patches with a sequence number.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame to bytes.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a patches frame using the provided encoder.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))

	for i := range pf.Patches {
		p := &pf.Patches[i]
		e.WriteByte(byte(p.Op))
		e.WriteString(p.Target)
		if p.Op.hasKey() {
			e.WriteString(p.Key)
		}
		if p.Op.hasValue() {
			e.WriteString(p.Value)
		}
	}
}

// DecodePatches decodes a patches frame from bytes.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := range patches {
		p := &patches[i]
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		p.Op = PatchOp(op)
		if p.Op.String() == "Unknown" {
			return nil, ErrInvalidPayload
		}
		if p.Target, err = d.ReadString(); err != nil {
			return nil, err
		}
		if p.Op.hasKey() {
			if p.Key, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		if p.Op.hasValue() {
			if p.Value, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

// Patch constructors.

func NewSetTextPatch(id, text string) Patch {
	return Patch{Op: PatchSetText, Target: id, Value: text}
}

func NewSetAttrPatch(id, key, value string) Patch {
	return Patch{Op: PatchSetAttr, Target: id, Key: key, Value: value}
}

func NewRemoveAttrPatch(id, key string) Patch {
	return Patch{Op: PatchRemoveAttr, Target: id, Key: key}
}

func NewSetValuePatch(id, value string) Patch {
	return Patch{Op: PatchSetValue, Target: id, Value: value}
}

func NewAddClassPatch(id, class string) Patch {
	return Patch{Op: PatchAddClass, Target: id, Key: class}
}

func NewRemoveClassPatch(id, class string) Patch {
	return Patch{Op: PatchRemoveClass, Target: id, Key: class}
}

// NewDispatchPatch asks the client to dispatch a native event (for
// example "click" or "submit") on the element.
func NewDispatchPatch(id, eventName string) Patch {
	return Patch{Op: PatchDispatch, Target: id, Key: eventName}
}
