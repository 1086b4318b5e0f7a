package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 instantiates the OpenAPI specification for this service.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Taskboard API",
			Description: "REST API used for managing the tasks of a board",
			Version:     "0.0.0",
			License: &openapi3.License{
				Name: "MIT",
				URL:  "https://opensource.org/licenses/MIT",
			},
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://127.0.0.1:9234",
			},
		},
		Security: openapi3.SecurityRequirements{
			{"bearerAuth": []string{}},
		},
	}

	priority := openapi3.NewStringSchema().WithEnum("low", "medium", "high")
	status := openapi3.NewStringSchema().WithEnum("todo", "in-progress", "completed")

	task := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewUUIDSchema()).
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
		WithProperty("description", openapi3.NewStringSchema().WithMaxLength(500)).
		WithPropertyRef("priority", schemaRef("Priority", priority)).
		WithPropertyRef("status", schemaRef("Status", status)).
		WithProperty("dueDate", openapi3.NewDateTimeSchema()).
		WithProperty("position", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("user", openapi3.NewUUIDSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("updatedAt", openapi3.NewDateTimeSchema())

	user := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewUUIDSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("updatedAt", openapi3.NewDateTimeSchema())

	columnIndex := openapi3.NewObjectSchema().
		WithPropertyRef("status", schemaRef("Status", status)).
		WithProperty("index", openapi3.NewIntegerSchema().WithMin(0))

	stats := openapi3.NewObjectSchema().
		WithProperty("total", openapi3.NewIntegerSchema()).
		WithProperty("todo", openapi3.NewIntegerSchema()).
		WithProperty("inProgress", openapi3.NewIntegerSchema()).
		WithProperty("completed", openapi3.NewIntegerSchema()).
		WithProperty("byPriority", openapi3.NewObjectSchema().
			WithProperty("low", openapi3.NewIntegerSchema()).
			WithProperty("medium", openapi3.NewIntegerSchema()).
			WithProperty("high", openapi3.NewIntegerSchema()))

	tasks := openapi3.NewArraySchema()
	tasks.Items = schemaRef("Task", task)

	swagger.Components.Schemas = openapi3.Schemas{
		"Priority":    openapi3.NewSchemaRef("", priority),
		"Status":      openapi3.NewSchemaRef("", status),
		"Task":        openapi3.NewSchemaRef("", task),
		"User":        openapi3.NewSchemaRef("", user),
		"ColumnIndex": openapi3.NewSchemaRef("", columnIndex),
		"Stats":       openapi3.NewSchemaRef("", stats),
	}

	swagger.Components.SecuritySchemes = openapi3.SecuritySchemes{
		"bearerAuth": &openapi3.SecuritySchemeRef{
			Value: openapi3.NewJWTSecurityScheme(),
		},
	}

	swagger.Components.RequestBodies = openapi3.RequestBodies{
		"RegisterRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for signing up.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("name", openapi3.NewStringSchema().WithMinLength(2).WithMaxLength(50)).
					WithProperty("email", openapi3.NewStringSchema()).
					WithProperty("password", openapi3.NewStringSchema().WithMinLength(6))),
		},
		"LoginRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for signing in.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("email", openapi3.NewStringSchema()).
					WithProperty("password", openapi3.NewStringSchema())),
		},
		"CreateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating a task.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
					WithProperty("description", openapi3.NewStringSchema().WithMaxLength(500)).
					WithPropertyRef("priority", schemaRef("Priority", priority)).
					WithPropertyRef("status", schemaRef("Status", status)).
					WithProperty("dueDate", openapi3.NewDateTimeSchema())),
		},
		"UpdateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for updating a task, omitted fields are left untouched.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
					WithProperty("description", openapi3.NewStringSchema().WithMaxLength(500)).
					WithPropertyRef("priority", schemaRef("Priority", priority)).
					WithPropertyRef("status", schemaRef("Status", status)).
					WithProperty("dueDate", openapi3.NewDateTimeSchema()).
					WithProperty("position", openapi3.NewIntegerSchema().WithMin(0))),
		},
		"ReorderRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for moving a task to a column slot.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithPropertyRef("from", schemaRef("ColumnIndex", columnIndex)).
					WithPropertyRef("to", schemaRef("ColumnIndex", columnIndex)).
					WithProperty("task", openapi3.NewUUIDSchema())),
		},
	}

	envelope := func(data *openapi3.Schema) *openapi3.Schema {
		return openapi3.NewObjectSchema().
			WithProperty("success", openapi3.NewBoolSchema()).
			WithProperty("data", data)
	}

	swagger.Components.Responses = openapi3.Responses{
		"ErrorResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response when errors happen.").
				WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("success", openapi3.NewBoolSchema()).
					WithProperty("message", openapi3.NewStringSchema()).
					WithProperty("errors", openapi3.NewObjectSchema().
						WithAdditionalProperties(openapi3.NewStringSchema())))),
		},
		"AuthResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returned back after signing up or in, the token is also set as a cookie.").
				WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
					WithPropertyRef("user", schemaRef("User", user))).
					WithProperty("token", openapi3.NewStringSchema()))),
		},
		"TaskResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returned back after reading or writing one task.").
				WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
					WithPropertyRef("task", schemaRef("Task", task))))),
		},
		"TasksResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returned back after listing or searching tasks.").
				WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
					WithProperty("tasks", tasks)).
					WithProperty("results", openapi3.NewIntegerSchema()).
					WithProperty("total", openapi3.NewIntegerSchema()))),
		},
	}

	errorResponse := &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse", Value: swagger.Components.Responses["ErrorResponse"].Value}
	taskResponse := &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse", Value: swagger.Components.Responses["TaskResponse"].Value}
	tasksResponse := &openapi3.ResponseRef{Ref: "#/components/responses/TasksResponse", Value: swagger.Components.Responses["TasksResponse"].Value}
	authResponse := &openapi3.ResponseRef{Ref: "#/components/responses/AuthResponse", Value: swagger.Components.Responses["AuthResponse"].Value}

	requestBody := func(name string) *openapi3.RequestBodyRef {
		return &openapi3.RequestBodyRef{
			Ref:   "#/components/requestBodies/" + name,
			Value: swagger.Components.RequestBodies[name].Value,
		}
	}

	taskID := []*openapi3.ParameterRef{
		{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())},
	}

	filters := []*openapi3.ParameterRef{
		{Value: openapi3.NewQueryParameter("status").WithSchema(status)},
		{Value: openapi3.NewQueryParameter("priority").WithSchema(priority)},
	}

	public := &openapi3.SecurityRequirements{}

	swagger.Paths = openapi3.Paths{
		"/api/auth/register": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "Register",
				Security:    public,
				RequestBody: requestBody("RegisterRequest"),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"409": errorResponse,
					"500": errorResponse,
					"201": authResponse,
				},
			},
		},
		"/api/auth/login": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "Login",
				Security:    public,
				RequestBody: requestBody("LoginRequest"),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"500": errorResponse,
					"200": authResponse,
				},
			},
		},
		"/api/auth/me": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "Me",
				Responses: openapi3.Responses{
					"401": errorResponse,
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("The authenticated user.").
							WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
								WithPropertyRef("user", schemaRef("User", user))))),
					},
				},
			},
		},
		"/api/tasks": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Parameters: append(filters, &openapi3.ParameterRef{
					Value: openapi3.NewQueryParameter("sort").
						WithDescription("Fields separated by commas, a leading - sorts descending.").
						WithSchema(openapi3.NewStringSchema()),
				}),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"500": errorResponse,
					"200": tasksResponse,
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: requestBody("CreateTaskRequest"),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"500": errorResponse,
					"201": taskResponse,
				},
			},
		},
		"/api/tasks/stats": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "TaskStats",
				Responses: openapi3.Responses{
					"401": errorResponse,
					"500": errorResponse,
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Tasks counted per status and priority.").
							WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
								WithPropertyRef("stats", schemaRef("Stats", stats))))),
					},
				},
			},
		},
		"/api/tasks/search": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "SearchTasks",
				Parameters: append(filters,
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("q").WithRequired(true).WithSchema(openapi3.NewStringSchema())},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("from").WithSchema(openapi3.NewInt64Schema().WithMin(0))},
					&openapi3.ParameterRef{Value: openapi3.NewQueryParameter("size").WithSchema(openapi3.NewInt64Schema().WithMin(1).WithMax(100))},
				),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"500": errorResponse,
					"200": tasksResponse,
				},
			},
		},
		"/api/tasks/reorder": &openapi3.PathItem{
			Put: &openapi3.Operation{
				OperationID: "ReorderTasks",
				RequestBody: requestBody("ReorderRequest"),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"404": errorResponse,
					"500": errorResponse,
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Every task of the user in board order and the moved one.").
							WithContent(openapi3.NewContentWithJSONSchema(envelope(openapi3.NewObjectSchema().
								WithProperty("updated", tasks).
								WithPropertyRef("task", schemaRef("Task", task))))),
					},
				},
			},
		},
		"/api/tasks/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadTask",
				Parameters:  taskID,
				Responses: openapi3.Responses{
					"401": errorResponse,
					"404": errorResponse,
					"500": errorResponse,
					"200": taskResponse,
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateTask",
				Parameters:  taskID,
				RequestBody: requestBody("UpdateTaskRequest"),
				Responses: openapi3.Responses{
					"400": errorResponse,
					"401": errorResponse,
					"404": errorResponse,
					"500": errorResponse,
					"200": taskResponse,
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Parameters:  taskID,
				Responses: openapi3.Responses{
					"401": errorResponse,
					"404": errorResponse,
					"500": errorResponse,
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Task deleted"),
					},
				},
			},
		},
		"/api/health": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "Health",
				Security:    public,
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("The server is running.").
							WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
								WithProperty("success", openapi3.NewBoolSchema()).
								WithProperty("message", openapi3.NewStringSchema()).
								WithProperty("timestamp", openapi3.NewDateTimeSchema()))),
					},
				},
			},
		},
	}

	return swagger
}

// RegisterOpenAPI serves the document as JSON and YAML.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, r *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := yaml.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)

		_, _ = w.Write(data)
	})
}

func schemaRef(name string, value *openapi3.Schema) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Ref:   "#/components/schemas/" + name,
		Value: value,
	}
}
