package pathutil

// RefKey is the JSON Reference member name.
const RefKey = "$ref"

// Local reference prefixes.
const (
	RefPrefixDefinitions = "#/definitions/"
	RefPrefixComponents  = "#/components/"
	RefPrefixSchemas     = "#/components/schemas/"
)

// ComponentSections lists the OAS 3.x component sections that hold
// reusable, referenceable objects, in document order.
var ComponentSections = []string{
	"schemas",
	"parameters",
	"requestBodies",
	"responses",
	"headers",
	"securitySchemes",
	"examples",
	"links",
	"callbacks",
}

// SchemaRef builds "#/components/schemas/{name}" (OAS 3.x).
func SchemaRef(name string) string {
	return RefPrefixSchemas + Escape(name)
}

// ComponentRef builds "#/components/{section}/{name}" (OAS 3.x).
func ComponentRef(section, name string) string {
	return RefPrefixComponents + Escape(section) + "/" + Escape(name)
}
