package renderer

// Uniform names shared by both programs.
const (
	UniformModel      = "u_model"
	UniformView       = "u_view"
	UniformProjection = "u_projection"
	UniformMVP        = "u_mvp"
	UniformColor      = "u_color"
)

// SceneVertex transforms glTF positions (slot 0) by the MVP matrix.
const SceneVertex = `#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
uniform mat4 u_mvp;

out vec3 worldPos;

void main() {
    worldPos = (u_model * vec4(aPos, 1.0)).xyz;
    gl_Position = u_mvp * vec4(aPos, 1.0);
}
`

// SceneFragment fills with the primitive's flat base color.
const SceneFragment = `#version 410 core

in vec3 worldPos;
out vec4 FragColor;

uniform vec4 u_color;

void main() {
    FragColor = u_color;
}
`

// DemoVertex draws the builtin triangle: position at slot 0, color at slot 1.
const DemoVertex = `#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
uniform mat4 u_mvp;

out vec3 vertexColor;

void main() {
    gl_Position = u_mvp * vec4(aPos, 1.0);
    vertexColor = aColor;
}
`

// DemoFragment passes the interpolated vertex color through.
const DemoFragment = `#version 410 core

in vec3 vertexColor;
out vec4 FragColor;

void main() {
    FragColor = vec4(vertexColor, 1.0);
}
`
