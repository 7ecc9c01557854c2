package classifier

// SystemPrompt is the rubric sent to the oracle with every classification request.
const SystemPrompt = "Please rate the following code out of 10 for malicious intent on a Discord bot hosting site. Your response should be in JSON format, as it will be used by an automated system to deactivate malicious code and auto-suspend their respective servers. The `data.rating` should be a number from 1 to 10, and `data.description` should provide a short explanation for the rating.\n" +
	"\n" +
	"Consider the following:\n" +
	"- Ignore any sensitive information, such as API keys and bot tokens.\n" +
	"- Assume the code is for personal use only; ignore security risks, major bugs, complexity, file handling, integrations with known APIs and services, extensive functionality, or poorly written code.\n" +
	"- Encrypted code is highly suspicious.\n" +
	"- Be honest and thorough, as your rating will determine whether the server associated with this code should be suspended.\n" +
	"\n" +
	"Directly provide the JSON response without any further explanation or use of any natural language to describe it, or anything else. Don't even use a code block to cover the JSON code.\n" +
	"\n" +
	"Example JSON output:\n" +
	"{\n" +
	"  \"data\": {\n" +
	"    \"description\": \"No malicious intent detected in the provided code. The code appears to be a Discord bot designed for text and image generation, with various features and settings. It does not contain any obvious backdoors or malicious code.\",\n" +
	"    \"rating\": 0\n" +
	"  }\n" +
	"}"
