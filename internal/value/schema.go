package value

// Descriptor describes one property of one class: either a plain value
// type (ValueKind set, EnumName empty) or an enum (EnumName set).
type Descriptor struct {
	ValueKind Kind
	IsEnum    bool
	EnumName  string
}

// classDescriptor holds one class's declared properties plus its
// superclass name, close enough to a real engine reflection database's
// shape to walk the superclass chain the same way.
type classDescriptor struct {
	superclass string
	properties map[string]Descriptor
}

// Schema is a minimal, hand-authored slice of the engine's class/property
// reflection database: enough classes and properties to resolve every
// property the middleware layer actually emits (Script/LocalScript/
// ModuleScript/Source/Disabled/RunContext, LocalizationTable/Contents,
// StringValue/Value, Folder/Model and their common Instance-level
// properties, plus MeshPart's mesh properties). A full reflection database
// (thousands of classes) is out of scope for a hand-authored table; callers
// needing broader coverage call RegisterClass to extend a Schema instance
// at construction time.
type Schema struct {
	classes map[string]classDescriptor
	enums   map[string]map[string]uint32
}

// NewSchema returns a Schema preloaded with the classes the middleware
// layer needs.
func NewSchema() *Schema {
	s := &Schema{
		classes: map[string]classDescriptor{},
		enums:   map[string]map[string]uint32{},
	}
	s.registerDefaults()
	return s
}

// RegisterClass adds or replaces a class's property table.
func (s *Schema) RegisterClass(class, superclass string, properties map[string]Descriptor) {
	s.classes[class] = classDescriptor{superclass: superclass, properties: properties}
}

// RegisterEnum adds or replaces an enum's name->value table.
func (s *Schema) RegisterEnum(name string, items map[string]uint32) {
	s.enums[name] = items
}

func (s *Schema) registerDefaults() {
	instanceProps := map[string]Descriptor{
		"Name": {ValueKind: KindString},
		"Tags": {ValueKind: KindTags},
	}

	s.RegisterClass("Instance", "", instanceProps)
	s.RegisterClass("Folder", "Instance", map[string]Descriptor{})
	s.RegisterClass("Model", "Instance", map[string]Descriptor{})
	s.RegisterClass("Configuration", "Instance", map[string]Descriptor{})

	s.RegisterEnum("RunContext", map[string]uint32{
		"Legacy": 0, "Server": 1, "Client": 2, "Plugin": 3,
	})

	scriptProps := map[string]Descriptor{
		"Source":     {ValueKind: KindString},
		"Disabled":   {ValueKind: KindBool},
		"RunContext": {IsEnum: true, EnumName: "RunContext"},
	}
	s.RegisterClass("LuaSourceContainer", "Instance", map[string]Descriptor{"Source": {ValueKind: KindString}})
	s.RegisterClass("BaseScript", "LuaSourceContainer", map[string]Descriptor{"Disabled": {ValueKind: KindBool}})
	s.RegisterClass("Script", "BaseScript", scriptProps)
	s.RegisterClass("LocalScript", "BaseScript", map[string]Descriptor{
		"Source": {ValueKind: KindString}, "Disabled": {ValueKind: KindBool},
	})
	s.RegisterClass("ModuleScript", "LuaSourceContainer", map[string]Descriptor{
		"Source": {ValueKind: KindString},
	})

	s.RegisterClass("ValueBase", "Instance", map[string]Descriptor{})
	s.RegisterClass("StringValue", "ValueBase", map[string]Descriptor{
		"Value": {ValueKind: KindString},
	})

	s.RegisterClass("LocalizationTable", "Instance", map[string]Descriptor{
		"Contents":     {ValueKind: KindString},
		"SourceLocaleId": {ValueKind: KindString},
	})

	s.RegisterClass("BasePart", "Instance", map[string]Descriptor{
		"Position": {ValueKind: KindVector3},
		"Size":     {ValueKind: KindVector3},
		"CFrame":   {ValueKind: KindCFrame},
		"Color":    {ValueKind: KindColor3},
	})
	s.RegisterClass("MeshPart", "BasePart", map[string]Descriptor{
		"MeshContent": {ValueKind: KindContent},
		"InitialSize": {ValueKind: KindVector3},
	})

	for _, svc := range []string{
		"Workspace", "ReplicatedStorage", "ReplicatedFirst", "ServerStorage",
		"ServerScriptService", "StarterGui", "StarterPack", "StarterPlayer",
		"Lighting", "SoundService", "Chat", "TextChatService", "Teams",
	} {
		s.RegisterClass(svc, "Instance", map[string]Descriptor{})
	}
}

// Lookup walks the superclass chain starting at class looking for property,
// returning its descriptor. ok is false for an unknown class or an unknown
// property anywhere in the chain.
func (s *Schema) Lookup(class, property string) (Descriptor, bool) {
	current := class
	for {
		cd, ok := s.classes[current]
		if !ok {
			return Descriptor{}, false
		}
		if d, ok := cd.properties[property]; ok {
			return d, true
		}
		if cd.superclass == "" {
			return Descriptor{}, false
		}
		current = cd.superclass
	}
}

// EnumValue resolves an enum item name to its numeric value.
func (s *Schema) EnumValue(enumName, item string) (uint32, bool) {
	items, ok := s.enums[enumName]
	if !ok {
		return 0, false
	}
	v, ok := items[item]
	return v, ok
}

// IsService reports whether name is a conventional top-level service class.
// The directory middleware calls this to pick a class for a folder that
// designates a service when no sidecar overrides it.
func (s *Schema) IsService(name string) bool {
	_, ok := s.classes[name]
	if !ok {
		return false
	}
	switch name {
	case "Workspace", "ReplicatedStorage", "ReplicatedFirst", "ServerStorage",
		"ServerScriptService", "StarterGui", "StarterPack", "StarterPlayer",
		"Lighting", "SoundService", "Chat", "TextChatService", "Teams":
		return true
	default:
		return false
	}
}
