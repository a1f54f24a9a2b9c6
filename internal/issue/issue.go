// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	XMLParseErrorId
	NoRobotTagId
	MissingModelNameId
	DuplicateModelNameId
	PackageNotFoundId
	MeshNotFoundId
	InvalidJointId
	InvalidTransmissionId
	InvalidBushingId
	CollisionFilterGroupId
	BuilderPreconditionId
	KinematicLoopId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	slug     string      // name accepted by 'urdfkit explain'
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference documentation for the element involved
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Slug() string {
	return i.slug
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var extraMd strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extraMd.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			extraMd.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(string(i.mdMsg)+extraMd.String(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id:   FileNotFoundId,
		slug: "file-not-found",
		mdMsg: `
# URDF file not found!

The file passed on the command line could not be read.

## Things you can try:
- Check the path for typos; relative paths are resolved from the current directory
- Make sure the file is readable by your user
~~~
$ ls -l robot.urdf
~~~`,
	}

	xmlParseErrorIssue = &Issue{
		id:   XMLParseErrorId,
		slug: "xml-parse-error",
		mdMsg: `
# Failed to parse XML!

The document is not well-formed XML, so no model was loaded.
The message names the line where the parser gave up.

## Common causes:
- A tag that is opened but never closed (` + "`<link>`" + ` without ` + "`</link>`" + `)
- Two top-level elements; a URDF file has exactly one ` + "`<robot>`" + ` root
- Unescaped ` + "`&`" + ` or ` + "`<`" + ` in attribute values
- A xacro file that was not expanded first

## Things you can try:
~~~
$ xmllint --noout robot.urdf
$ xacro robot.urdf.xacro > robot.urdf
~~~`,
		extLinks: []HttpLink{"https://wiki.ros.org/urdf/XML"},
	}

	noRobotTagIssue = &Issue{
		id:   NoRobotTagId,
		slug: "no-robot-tag",
		mdMsg: `
# URDF does not contain a robot tag!

The root element of a URDF document must be ` + "`<robot>`" + `.

## Example:
~~~xml
<?xml version="1.0"?>
<robot name="my_robot">
  <link name="base_link"/>
</robot>
~~~`,
		docLinks: []HttpLink{"https://wiki.ros.org/urdf/XML/robot"},
	}

	missingModelNameIssue = &Issue{
		id:   MissingModelNameId,
		slug: "missing-model-name",
		mdMsg: `
# Your robot must have a name!

The model instance is named after ` + "`<robot name=\"...\">`" + `.

## Things you can try:
- Add a ` + "`name`" + ` attribute to the ` + "`<robot>`" + ` element
- Or pass a name on the command line:
~~~
$ urdfkit inspect --model-name arm robot.urdf
~~~`,
	}

	duplicateModelNameIssue = &Issue{
		id:   DuplicateModelNameId,
		slug: "duplicate-model-name",
		mdMsg: `
# Duplicate model instance name!

Every model loaded into the same plant needs a unique name.
Loading the same file twice requires a different name the second time.

## Things you can try:
~~~
$ urdfkit inspect --model-name left_arm arm.urdf
~~~`,
	}

	packageNotFoundIssue = &Issue{
		id:   PackageNotFoundId,
		slug: "package-not-found",
		mdMsg: `
# Package not found!

A ` + "`package://name/...`" + ` or ` + "`model://name/...`" + ` URI names a package
that is not in the package map.

## How packages are found:
1. Folders given with ` + "`--package-path`" + ` or ` + "`package_paths`" + ` in the config
   are searched recursively for ` + "`package.xml`" + `; the ` + "`<name>`" + ` element is the package name
2. A TOML manifest (` + "`package_manifest`" + ` in the config):
~~~toml
[packages]
arm_description = "robots/arm"
~~~

## Things you can try:
~~~
$ urdfkit validate --package-path ~/ros_ws/src robot.urdf
~~~`,
		extLinks: []HttpLink{"https://www.ros.org/reps/rep-0149.html"},
	}

	meshNotFoundIssue = &Issue{
		id:   MeshNotFoundId,
		slug: "mesh-not-found",
		mdMsg: `
# Mesh file not found!

A ` + "`<mesh filename=\"...\">`" + ` could not be resolved to an existing file.
Relative file names are resolved against the folder of the URDF document.

## Things you can try:
- Use a ` + "`package://`" + ` URI and configure the package map
- Check the capitalization of the file name`,
	}

	invalidJointIssue = &Issue{
		id:   InvalidJointId,
		slug: "invalid-joint",
		mdMsg: `
# Invalid joint!

Joints need a name, a type, a ` + "`<parent link>`" + ` and a ` + "`<child link>`" + `
naming links of the same model (or ` + "`world`" + `).

## Supported types:
| type | degrees of freedom |
|---|---|
| revolute, continuous | 1 |
| prismatic | 1 |
| fixed | 0 |
| floating | 6 |
| planar | 3 |
| ball (drake:joint) | 3 |
| universal (drake:joint) | 2 |

## Common causes:
- ` + "`<axis xyz=\"0 0 0\"/>`" + `: the axis must not be zero
- ` + "`<limit>`" + ` values that are negative where they must be non-negative
- A link used as the child of two joints`,
		docLinks: []HttpLink{"https://wiki.ros.org/urdf/XML/joint"},
	}

	invalidTransmissionIssue = &Issue{
		id:   InvalidTransmissionId,
		slug: "invalid-transmission",
		mdMsg: `
# Invalid transmission!

Only ` + "`SimpleTransmission`" + ` is supported. Each transmission needs exactly one
` + "`<joint>`" + ` and one ` + "`<actuator>`" + `, both named.

## Example:
~~~xml
<transmission name="t1">
  <type>transmission_interface/SimpleTransmission</type>
  <joint name="shoulder"/>
  <actuator name="shoulder_motor">
    <mechanicalReduction>50</mechanicalReduction>
  </actuator>
</transmission>
~~~

Joints with a zero effort limit get no actuator.`,
		docLinks: []HttpLink{"https://wiki.ros.org/urdf/XML/Transmission"},
	}

	invalidBushingIssue = &Issue{
		id:   InvalidBushingId,
		slug: "invalid-bushing",
		mdMsg: `
# Invalid linear bushing!

` + "`<drake:linear_bushing_rpy>`" + ` needs two frames and six 3-vector parameters.

## Example:
~~~xml
<drake:linear_bushing_rpy>
  <drake:bushing_frameA name="frame_on_A"/>
  <drake:bushing_frameC name="frame_on_C"/>
  <drake:bushing_torque_stiffness value="10 20 30"/>
  <drake:bushing_torque_damping value="1 2 3"/>
  <drake:bushing_force_stiffness value="100 200 300"/>
  <drake:bushing_force_damping value="5 5 5"/>
</drake:linear_bushing_rpy>
~~~

Frame names may be links or ` + "`<frame>`" + ` elements of the same model.`,
	}

	collisionFilterGroupIssue = &Issue{
		id:   CollisionFilterGroupId,
		slug: "collision-filter-group",
		mdMsg: `
# Invalid collision filter group!

A group lists ` + "`<drake:member link=\"...\"/>`" + ` elements and the groups whose
members must not collide with its own (` + "`<drake:ignored_collision_filter_group>`" + `).
A group may ignore itself.

## Common causes:
- A group without a ` + "`name`" + `
- A member without a ` + "`link`" + ` or naming an unknown link

Groups with ` + "`ignore=\"true\"`" + ` are skipped entirely.`,
	}

	builderPreconditionIssue = &Issue{
		id:   BuilderPreconditionId,
		slug: "builder-precondition",
		mdMsg: `
# The model builder rejected an element!

The document parsed, but the model it describes is physically invalid,
so loading stopped.

## Common causes:
- ` + "`condition 'mass > 0' failed.`" + `: a link has zero mass but non-zero inertia
- ` + "`condition 'mass >= 0' failed.`" + `: negative mass`,
	}

	kinematicLoopIssue = &Issue{
		id:   KinematicLoopId,
		slug: "kinematic-loop",
		mdMsg: `
# Kinematic loop detected!

Joints must form a tree rooted at ` + "`world`" + `: every link has at most one parent.
Closed chains need a ` + "`<drake:linear_bushing_rpy>`" + ` instead of a joint.`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		slug: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

The configuration file is CUE, validated against a schema. Every key is optional.

## Accepted keys:
~~~cue
log_level:        "debug" | "info" | "warn" | "error"
strict:           bool
output_format:    "text" | "yaml" | "json"
package_paths:    [...string]
package_manifest: string
~~~

Environment variables (` + "`URDFKIT_LOG_LEVEL`" + `, ` + "`URDFKIT_STRICT`" + `, ...) override the file.

## Things you can try:
~~~
$ urdfkit config show
$ urdfkit config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():         fileNotFoundIssue,
		xmlParseErrorIssue.Id():        xmlParseErrorIssue,
		noRobotTagIssue.Id():           noRobotTagIssue,
		missingModelNameIssue.Id():     missingModelNameIssue,
		duplicateModelNameIssue.Id():   duplicateModelNameIssue,
		packageNotFoundIssue.Id():      packageNotFoundIssue,
		meshNotFoundIssue.Id():         meshNotFoundIssue,
		invalidJointIssue.Id():         invalidJointIssue,
		invalidTransmissionIssue.Id():  invalidTransmissionIssue,
		invalidBushingIssue.Id():       invalidBushingIssue,
		collisionFilterGroupIssue.Id(): collisionFilterGroupIssue,
		builderPreconditionIssue.Id():  builderPreconditionIssue,
		kinematicLoopIssue.Id():        kinematicLoopIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

// GetBySlug looks an issue up by the name shown in 'urdfkit explain'.
func GetBySlug(slug string) *Issue {
	for _, i := range issues {
		if i.slug == slug {
			return i
		}
	}
	return nil
}
