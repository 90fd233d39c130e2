package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/pkg/models"
)

// NewServer creates a new MCP server over the board.
func NewServer(b *board.Board) *server.MCPServer {
	return newServer(b, time.Now)
}

func newServer(b *board.Board, now func() time.Time) *server.MCPServer {
	s := server.NewMCPServer("things2do", "1.0.0")

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with their quadrant. Priority order by default: quadrant, then importance, then urgency."),
		mcp.WithString("order", mcp.Description("'priority' (default) or 'insertion'")),
	), listTasksHandler(b))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(b))

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Place a new task on the grid. Coordinates are clamped to the grid."),
		mcp.WithString("name", mcp.Description("Task name (non-empty)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithNumber("importance", mcp.Description("Importance, x axis (0 to grid size - 1)"), mcp.Required()),
		mcp.WithNumber("urgency", mcp.Description("Urgency, y axis; lower is more urgent"), mcp.Required()),
		mcp.WithNumber("importance_step", mcp.Description("Importance change per day")),
		mcp.WithNumber("urgency_step", mcp.Description("Urgency change per day")),
		mcp.WithString("end_date", mcp.Description("End date YYYY-MM-DD; invalid means no end date")),
	), addTaskHandler(b, now))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Edit a task. Only the given fields change."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithNumber("importance_step", mcp.Description("New importance change per day")),
		mcp.WithNumber("urgency_step", mcp.Description("New urgency change per day")),
		mcp.WithString("end_date", mcp.Description("New end date YYYY-MM-DD; empty clears it")),
	), updateTaskHandler(b))

	s.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task to new coordinates."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithNumber("importance", mcp.Description("New importance"), mcp.Required()),
		mcp.WithNumber("urgency", mcp.Description("New urgency"), mcp.Required()),
	), moveTaskHandler(b))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Remove a task from the board."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(b))

	s.AddTool(mcp.NewTool("task_at",
		mcp.WithDescription("Get the task occupying a grid cell."),
		mcp.WithNumber("x", mcp.Description("Cell column"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Cell row"), mcp.Required()),
	), taskAtHandler(b))

	s.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Apply daily drift for every whole day elapsed since each task last moved."),
	), tickHandler(b, now))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listTasksHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		order := mcp.ParseString(request, "order", "priority")
		if order != "priority" && order != "insertion" {
			return mcp.NewToolResultError(fmt.Sprintf("unknown order '%s'", order)), nil
		}
		return jsonResult(map[string]any{"tasks": b.Views(order == "priority")})
	}
}

func getTaskHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		t, ok := b.Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}
		return jsonResult(b.View(&t))
	}
}

func addTaskHandler(b *board.Board, now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t := models.NewTask(
			mcp.ParseString(request, "name", ""),
			mcp.ParseString(request, "description", ""),
			mcp.ParseFloat64(request, "importance", 0),
			mcp.ParseFloat64(request, "urgency", 0),
			mcp.ParseFloat64(request, "importance_step", 0),
			mcp.ParseFloat64(request, "urgency_step", 0),
			models.ParseEndDate(mcp.ParseString(request, "end_date", "")),
			now(),
		)

		added, err := b.Add(t)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(b.View(&added))
	}
}

func updateTaskHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		args, _ := request.Params.Arguments.(map[string]any)

		updated, err := b.Update(id, func(t *models.Task) {
			if name, ok := args["name"].(string); ok {
				t.Name = name
			}
			if description, ok := args["description"].(string); ok {
				t.Description = description
			}
			if step, ok := args["importance_step"].(float64); ok {
				t.ImportanceStep = step
			}
			if step, ok := args["urgency_step"].(float64); ok {
				t.UrgencyStep = step
			}
			if end, ok := args["end_date"].(string); ok {
				t.EndDate = models.ParseEndDate(end)
			}
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(b.View(&updated))
	}
}

func moveTaskHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		moved, err := b.Move(
			mcp.ParseString(request, "id", ""),
			mcp.ParseFloat64(request, "importance", 0),
			mcp.ParseFloat64(request, "urgency", 0),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(b.View(&moved))
	}
}

func deleteTaskHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if !b.Remove(id) {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' deleted.", id)), nil
	}
}

func taskAtHandler(b *board.Board) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		x := int(mcp.ParseFloat64(request, "x", -1))
		y := int(mcp.ParseFloat64(request, "y", -1))
		t, ok := b.TaskAt(x, y)
		if !ok {
			return mcp.NewToolResultText(fmt.Sprintf("No task at (%d, %d).", x, y)), nil
		}
		return jsonResult(b.View(&t))
	}
}

func tickHandler(b *board.Board, now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		moved := b.Tick(now())
		return jsonResult(map[string]any{"moved": moved, "tasks": b.Len()})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
