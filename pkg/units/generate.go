package units

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
)

// GenerationUnit produces code from a natural language description by
// matching the description against a small template catalog.
type GenerationUnit struct{}

func NewGenerationUnit() *GenerationUnit { return &GenerationUnit{} }

func (u *GenerationUnit) Capability() core.Capability { return core.CapabilityGeneration }

var (
	funcNameRe  = regexp.MustCompile(`(?i)function (?:called |named )?(\w+)`)
	classNameRe = regexp.MustCompile(`(?i)class (\w+)`)
	paramsRe    = regexp.MustCompile(`(?i)(?:takes?|with parameters?) ([\w, ]+)`)
)

func (u *GenerationUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	if err := req.Validate(); err != nil {
		return core.Failure("no problem statement provided for code generation"), nil
	}

	description := strings.TrimSpace(req.Payload)

	var code string
	switch req.Language {
	case core.LanguageJava:
		code = generateJava(description)
	default:
		code = generatePython(description)
	}

	logging.GetLogger().Debug(ctx, "generated %d bytes of %s code", len(code), req.Language)

	return core.SuccessResult(map[string]interface{}{
		"generated_code": code,
		"language":       req.Language.String(),
		"description":    description,
		"metadata": map[string]interface{}{
			"lines_of_code":          linesOfCode(code, req.Language),
			"has_docstring":          strings.Contains(code, `"""`) || strings.Contains(code, "/**"),
			"estimated_complexity":   estimateComplexity(code),
			"suggested_improvements": suggestImprovements(description, code),
		},
	}), nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func generatePython(description string) string {
	lower := strings.ToLower(description)
	switch {
	case containsAny(lower, "api", "rest", "http", "endpoint"):
		return pythonAPIClient(description)
	case containsAny(lower, "algorithm", "sort", "search"):
		return pythonAlgorithm(lower)
	case containsAny(lower, "class", "object"):
		return pythonClass(description)
	case containsAny(lower, "function", "method"):
		return pythonFunction(description)
	default:
		return fmt.Sprintf("\"\"\"\n%s\n\"\"\"\n\ndef main():\n    # TODO: Implement based on description\n    pass\n\nif __name__ == \"__main__\":\n    main()\n", description)
	}
}

func pythonAPIClient(description string) string {
	name := "API"
	if m := regexp.MustCompile(`(?i)for (\w+)`).FindStringSubmatch(description); m != nil {
		name = titleCaser.String(m[1])
	}
	return fmt.Sprintf(`import requests
from typing import Dict, Any, Optional


class %sClient:
    """Client for the %s API"""

    def __init__(self, base_url: str, api_key: Optional[str] = None):
        self.base_url = base_url.rstrip('/')
        self.session = requests.Session()
        if api_key:
            self.session.headers['Authorization'] = f'Bearer {api_key}'

    def get(self, endpoint: str, params: Optional[Dict] = None) -> Dict[str, Any]:
        response = self.session.get(f'{self.base_url}/{endpoint}', params=params)
        response.raise_for_status()
        return response.json()

    def post(self, endpoint: str, data: Dict[str, Any]) -> Dict[str, Any]:
        response = self.session.post(f'{self.base_url}/{endpoint}', json=data)
        response.raise_for_status()
        return response.json()
`, name, name)
}

func pythonClass(description string) string {
	name := "MyClass"
	if m := classNameRe.FindStringSubmatch(description); m != nil {
		name = titleCaser.String(m[1])
	}
	return fmt.Sprintf(`class %s:
    """%s"""

    def __init__(self):
        pass

    def __repr__(self):
        return f'%s()'
`, name, description, name)
}

func pythonFunction(description string) string {
	name := "my_function"
	if m := funcNameRe.FindStringSubmatch(description); m != nil {
		name = strings.ToLower(m[1])
	}

	params := "x"
	if m := paramsRe.FindStringSubmatch(description); m != nil {
		parts := strings.Split(m[1], ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		params = strings.Join(parts, ", ")
	}

	lower := strings.ToLower(description)
	body := "# TODO: Implement function logic\n    result = None"
	switch {
	case containsAny(lower, "sum", "add"):
		if strings.Contains(params, ",") {
			parts := strings.Split(params, ", ")
			body = "result = " + strings.Join(parts, " + ")
		} else {
			body = fmt.Sprintf("result = sum(%s)", params)
		}
	case strings.Contains(lower, "filter"):
		first := strings.Split(params, ",")[0]
		body = fmt.Sprintf("result = [item for item in %s if condition]", strings.TrimSpace(first))
	}

	return fmt.Sprintf(`def %s(%s):
    """%s"""
    %s
    return result
`, name, params, description, body)
}

func pythonAlgorithm(lower string) string {
	switch {
	case strings.Contains(lower, "bubble sort"):
		return `def bubble_sort(arr):
    """
    Bubble sort.
    Time Complexity: O(n^2)
    Space Complexity: O(1)
    """
    n = len(arr)
    for i in range(n):
        swapped = False
        for j in range(0, n - i - 1):
            if arr[j] > arr[j + 1]:
                arr[j], arr[j + 1] = arr[j + 1], arr[j]
                swapped = True
        if not swapped:
            break
    return arr
`
	case strings.Contains(lower, "binary search"):
		return `def binary_search(arr, target):
    """
    Binary search over a sorted list.
    Time Complexity: O(log n)
    Space Complexity: O(1)
    """
    left, right = 0, len(arr) - 1

    while left <= right:
        mid = (left + right) // 2

        if arr[mid] == target:
            return mid
        elif arr[mid] < target:
            left = mid + 1
        else:
            right = mid - 1

    return -1  # Not found
`
	case containsAny(lower, "quicksort", "quick sort"):
		return `def quicksort(arr):
    """
    Quicksort.
    Time Complexity: O(n log n) average, O(n^2) worst
    Space Complexity: O(log n)
    """
    if len(arr) <= 1:
        return arr

    pivot = arr[len(arr) // 2]
    left = [x for x in arr if x < pivot]
    middle = [x for x in arr if x == pivot]
    right = [x for x in arr if x > pivot]

    return quicksort(left) + middle + quicksort(right)
`
	case strings.Contains(lower, "merge sort"):
		return pythonMergeSort
	default:
		return "# Algorithm implementation\n# Please specify the algorithm\n"
	}
}

const pythonMergeSort = `def merge_sort(arr):
    """
    Merge sort.
    Time Complexity: O(n log n)
    Space Complexity: O(n)
    """
    if len(arr) <= 1:
        return arr

    mid = len(arr) // 2
    left = merge_sort(arr[:mid])
    right = merge_sort(arr[mid:])

    return merge(left, right)


def merge(left, right):
    result = []
    i = j = 0

    while i < len(left) and j < len(right):
        if left[i] <= right[j]:
            result.append(left[i])
            i += 1
        else:
            result.append(right[j])
            j += 1

    result.extend(left[i:])
    result.extend(right[j:])
    return result
`

func generateJava(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "binary search"):
		return `public class BinarySearch {
    public static int binarySearch(int[] arr, int target) {
        int left = 0, right = arr.length - 1;

        while (left <= right) {
            int mid = left + (right - left) / 2;

            if (arr[mid] == target) {
                return mid;
            } else if (arr[mid] < target) {
                left = mid + 1;
            } else {
                right = mid - 1;
            }
        }

        return -1; // Not found
    }
}
`
	case containsAny(lower, "sort", "algorithm"):
		return `public class BubbleSort {
    public static void bubbleSort(int[] arr) {
        int n = arr.length;
        for (int i = 0; i < n - 1; i++) {
            boolean swapped = false;
            for (int j = 0; j < n - i - 1; j++) {
                if (arr[j] > arr[j + 1]) {
                    int temp = arr[j];
                    arr[j] = arr[j + 1];
                    arr[j + 1] = temp;
                    swapped = true;
                }
            }
            if (!swapped) break;
        }
    }
}
`
	case strings.Contains(lower, "class"):
		name := "MyClass"
		if m := classNameRe.FindStringSubmatch(description); m != nil {
			name = titleCaser.String(m[1])
		}
		return fmt.Sprintf(`public class %s {

    public %s() {
        // Initialize
    }

    public static void main(String[] args) {
        %s obj = new %s();
    }
}
`, name, name, name, name)
	default:
		return fmt.Sprintf(`/**
 * %s
 */
public class Main {
    public static void main(String[] args) {
        // TODO: Implement based on description
    }
}
`, description)
	}
}

// estimateComplexity gives a rough big-O guess from loop counts.
func estimateComplexity(code string) string {
	loops := strings.Count(code, "for ") + strings.Count(code, "while ")
	switch loops {
	case 0:
		return "O(1) - Constant time"
	case 1:
		return "O(n) - Linear time"
	case 2:
		return "O(n^2) - Quadratic time"
	default:
		return fmt.Sprintf("O(n^%d) - Polynomial time", loops)
	}
}

func suggestImprovements(description, code string) []string {
	var suggestions []string
	if strings.Contains(code, "TODO") {
		suggestions = append(suggestions, "Complete the TODO sections with your specific logic")
	}
	if !strings.Contains(code, "try") && !strings.Contains(code, "catch") {
		suggestions = append(suggestions, "Add error handling for production use")
	}
	if strings.Contains(strings.ToLower(description), "test") {
		suggestions = append(suggestions, "Add unit tests for the generated code")
	}
	return suggestions
}
